package repository

import "strings"

// LikeEscape is the ESCAPE character paired with ContainsPattern. A
// backslash is not portable: MySQL treats it as a string-literal escape.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsPattern case-folds the term and wraps it for a LIKE substring
// match against a LOWER()ed column.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
