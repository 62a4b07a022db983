package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	OtpLength = 6
	OtpTTL    = 5 * time.Minute
)

var otpSpace = big.NewInt(1_000_000)

// GenerateOTP returns a uniformly random 6-digit code. Leading zeros are kept.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OtpLength, n.Int64()), nil
}
