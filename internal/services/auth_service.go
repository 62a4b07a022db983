package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taonaire/catalog-backend/internal/config"
	"github.com/taonaire/catalog-backend/internal/dto"
	"github.com/taonaire/catalog-backend/internal/models"
	"github.com/taonaire/catalog-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	BcryptCost = 12

	// mailTimeout bounds OTP delivery inside the forgot-password request.
	mailTimeout = 10 * time.Second
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrAccountNotFound       = errors.New("no account for this email")
	ErrGoogleOnlyAccount     = errors.New("account has no password; use google sign-in")
	ErrWrongPassword         = errors.New("wrong password")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidOTP            = errors.New("invalid or expired otp")
	ErrInvalidToken          = errors.New("invalid or expired token")
)

// TokenClaims is the payload carried by access tokens.
type TokenClaims struct {
	UserID uint
	Email  string
}

type AuthService struct {
	users      *repository.UserRepository
	otps       *repository.OtpRepository
	mailer     Mailer
	cfg        *config.Config
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		users:      repository.NewUserRepository(db),
		otps:       repository.NewOtpRepository(db),
		mailer:     mailer,
		cfg:        cfg,
		bcryptCost: BcryptCost,
		now:        time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*models.User, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		Password:     &hash,
		AuthProvider: models.ProviderLocal,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		// A concurrent signup won the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrGoogleOnlyAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	return s.authResponse(user)
}

// GoogleLogin resolves the token subject to an account: by google_id, then by
// email (linking or relinking the Google id), else a new Google-only account. Repeating the
// call with the same token yields the same account.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*dto.AuthResponse, error) {
	claims, err := DecodeGoogleIDToken(idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveGoogleUser(ctx, claims)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent login for the same identity; the row
		// exists now.
		user, err = s.resolveGoogleUser(ctx, claims)
	}
	if err != nil {
		return nil, err
	}

	return s.authResponse(user)
}

func (s *AuthService) resolveGoogleUser(ctx context.Context, claims *GoogleClaims) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, claims.Sub)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err = s.users.FindByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		// The email is the account key; a new Google subject replaces the old one.
		previous := user.GoogleID
		provider := models.ProviderGoogle
		if user.HasPassword() {
			provider = models.ProviderLocalGoogle
		}
		if err := s.users.LinkGoogle(ctx, user, claims.Sub, provider); err != nil {
			return nil, err
		}
		if previous != nil {
			slog.Info("google account relinked", "user_id", user.ID, "action", "google.relink")
		} else {
			slog.Info("google account linked", "user_id", user.ID)
		}
		return user, nil
	case errors.Is(err, repository.ErrNotFound):
		googleID := claims.Sub
		user = &models.User{
			Name:         claims.Name,
			Email:        claims.Email,
			GoogleID:     &googleID,
			AuthProvider: models.ProviderGoogle,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	default:
		return nil, err
	}
}

// ForgotPassword replaces any outstanding code with a fresh one and tries to
// mail it. Delivery failures are logged, never returned.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	otp := models.OtpCode{
		UserID:    user.ID,
		Otp:       code,
		ExpiresAt: s.now().Add(OtpTTL),
	}
	if err := s.otps.Replace(ctx, &otp); err != nil {
		return err
	}

	if s.mailer == nil {
		return nil
	}
	sendCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := s.mailer.SendOTP(sendCtx, user.Email, user.Name, code); err != nil {
		attrs := []any{"error", err, "user_id", user.ID, "action", "otp.deliver"}
		if s.cfg.IsDevelopment() {
			attrs = append(attrs, "otp", code)
		}
		slog.Warn("otp email delivery failed", attrs...)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	latest, err := s.otps.LatestValid(ctx, user.ID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(latest.Otp), []byte(req.Otp)) != 1 {
		return ErrInvalidOTP
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	provider := user.AuthProvider
	if provider == models.ProviderGoogle {
		provider = models.ProviderLocalGoogle
	}

	if err := s.otps.ConsumeAndSetPassword(ctx, latest, hash, provider); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	return nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":    strconv.FormatUint(uint64(user.ID), 10),
		"userId": user.ID,
		"email":  user.Email,
		"iat":    now.Unix(),
		"exp":    now.Add(s.cfg.JWTExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ClaimsFromMap extracts the identity from signature-checked token claims.
// Tokens without exp are rejected: every access token is time-limited. JSON
// numbers arrive as float64.
func ClaimsFromMap(claims jwt.MapClaims) (*TokenClaims, error) {
	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return nil, ErrInvalidToken
	}
	id, ok := claims["userId"].(float64)
	if !ok || id < 1 {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return &TokenClaims{UserID: uint(id), Email: email}, nil
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
