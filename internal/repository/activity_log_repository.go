package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taonaire/catalog-backend/internal/models"
	"gorm.io/gorm"
)

type ActivityLogFilter struct {
	Limit  int
	UserID *uint
	Method string
	Path   string
}

type ActivitySummary struct {
	TotalRequests    int64    `json:"total_requests"`
	UniqueUsers      int64    `json:"unique_users"`
	AvgResponseTime  *float64 `json:"avg_response_time"`
	MaxResponseTime  *int64   `json:"max_response_time"`
	ErrorCount       int64    `json:"error_count"`
	SuccessCount     int64    `json:"success_count"`
	MostAccessedPath *string  `json:"most_accessed_path"`
	MostUsedMethod   *string  `json:"most_used_method"`
}

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

// Recent returns the newest entries first, joined with the owning user.
func (r *ActivityLogRepository) Recent(ctx context.Context, f ActivityLogFilter) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("activity_logs.*, users.name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = activity_logs.user_id")

	if f.UserID != nil {
		query = query.Where("activity_logs.user_id = ?", *f.UserID)
	}
	if f.Method != "" {
		query = query.Where("activity_logs.method = ?", strings.ToUpper(f.Method))
	}
	if f.Path != "" {
		query = query.Where("LOWER(activity_logs.path) LIKE ? ESCAPE '"+LikeEscape+"'", ContainsPattern(f.Path))
	}

	logs := make([]models.ActivityLog, 0)
	err := query.Order("activity_logs.created_at DESC").Order("activity_logs.id DESC").
		Limit(f.Limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity logs: %w", err)
	}
	return logs, nil
}

// Summary aggregates every request logged since the given instant.
func (r *ActivityLogRepository) Summary(ctx context.Context, since time.Time) (*ActivitySummary, error) {
	db := r.db.WithContext(ctx)
	var s ActivitySummary

	err := db.Model(&models.ActivityLog{}).
		Select(`COUNT(*) AS total_requests,
			COUNT(DISTINCT user_id) AS unique_users,
			AVG(response_time_ms) AS avg_response_time,
			MAX(response_time_ms) AS max_response_time,
			COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0) AS error_count,
			COALESCE(SUM(CASE WHEN status_code < 400 THEN 1 ELSE 0 END), 0) AS success_count`).
		Where("created_at >= ?", since).
		Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize activity: %w", err)
	}

	if s.MostAccessedPath, err = r.mostFrequent(db, "path", since); err != nil {
		return nil, err
	}
	if s.MostUsedMethod, err = r.mostFrequent(db, "method", since); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ActivityLogRepository) mostFrequent(db *gorm.DB, column string, since time.Time) (*string, error) {
	var rows []struct {
		Item string
		Hits int64
	}
	err := db.Model(&models.ActivityLog{}).
		Select(column+" AS item, COUNT(*) AS hits").
		Where("created_at >= ?", since).
		Group(column).
		Order("hits DESC").Order(column + " ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank activity %s: %w", column, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0].Item, nil
}
