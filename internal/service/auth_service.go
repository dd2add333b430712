package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freightdesk/api/internal/autherr"
	"freightdesk/api/internal/config"
	"freightdesk/api/internal/models"
	"freightdesk/api/internal/repository"
	"freightdesk/api/internal/security"
)

// AuthService runs the login pipeline: credentials, license lifecycle,
// device binding, admin device gate, token issue. Every stage fails fast
// with a taxonomy error; either a token comes out or nothing does.
type AuthService struct {
	users       UserStore
	licenses    LicenseStore
	activations ActivationStore
	gate        *WhitelistService
	limiter     RateLimiter
	events      EventPublisher
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewAuthService(
	users UserStore,
	licenses LicenseStore,
	activations ActivationStore,
	gate *WhitelistService,
	limiter RateLimiter,
	events EventPublisher,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		licenses:    licenses,
		activations: activations,
		gate:        gate,
		limiter:     limiter,
		events:      events,
		cfg:         cfg,
		log:         log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return models.User{}, autherr.Validation("email and password are required")
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, autherr.Internal(err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Role:         models.UserRoleStaff,
		Status:       models.UserStatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.User{}, autherr.Validation("email already registered")
		}
		return models.User{}, autherr.Internal(err)
	}

	return user, nil
}

type LoginInput struct {
	Email      string
	Password   string
	DeviceID   string
	DeviceName string
	OSInfo     string
	IPAddress  string
}

type LoginResult struct {
	Token      string
	User       models.User
	License    models.License
	Activation models.DeviceActivation
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" || input.DeviceID == "" {
		return LoginResult{}, autherr.Validation("email, password and deviceId are required")
	}

	limiterKey := input.Email + "|" + input.IPAddress
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, limiterKey)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter check failed")
		} else if !allowed {
			return LoginResult{}, autherr.RateLimited()
		}
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Indistinguishable from a wrong password on purpose.
			return LoginResult{}, autherr.InvalidCredentials()
		}
		return LoginResult{}, autherr.Internal(err)
	}

	if user.Status != models.UserStatusActive {
		return LoginResult{}, autherr.InvalidCredentials()
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return LoginResult{}, autherr.InvalidCredentials()
	}
	if !ok {
		return LoginResult{}, autherr.InvalidCredentials()
	}

	license, err := s.licenses.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrLicenseNotFound) {
			return LoginResult{}, autherr.NoLicense()
		}
		return LoginResult{}, autherr.Internal(err)
	}

	// License lifecycle before any binding side effect: a revoked or
	// expired license must never create an activation row.
	switch license.StateAt(time.Now()) {
	case models.LicenseStateRevoked:
		s.publish(ctx, "login_rejected_revoked", user, license, input.DeviceID)
		return LoginResult{}, autherr.LicenseRevoked(license.RevokeReason)
	case models.LicenseStateExpired:
		s.publish(ctx, "login_rejected_expired", user, license, input.DeviceID)
		return LoginResult{}, autherr.LicenseExpired()
	}

	deviceName := input.DeviceName
	if deviceName == "" {
		deviceName = "Unknown Device"
	}

	outcome, err := s.activations.BindDevice(ctx, license.Key, input.DeviceID, deviceName, input.OSInfo)
	if err != nil {
		return LoginResult{}, autherr.Internal(err)
	}
	if outcome.Result == repository.BindResultMismatch {
		s.publish(ctx, "login_rejected_device_mismatch", user, license, input.DeviceID)
		return LoginResult{}, autherr.DeviceMismatch(outcome.Activation.DeviceName)
	}

	if user.Role == models.UserRoleAdmin {
		authorized, err := s.gate.IsDeviceAuthorized(ctx, input.DeviceID)
		if err != nil {
			return LoginResult{}, autherr.Internal(err)
		}
		if !authorized {
			s.publish(ctx, "login_rejected_admin_gate", user, license, input.DeviceID)
			return LoginResult{}, autherr.AdminGate()
		}
	}

	token, err := security.GenerateToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		user.Email,
		string(user.Role),
		input.DeviceID,
		license.Key,
		s.cfg.Security.TokenTTL,
	)
	if err != nil {
		return LoginResult{}, autherr.Internal(err)
	}

	if s.limiter != nil {
		s.limiter.Reset(ctx, limiterKey)
	}
	s.publish(ctx, "login_succeeded", user, license, input.DeviceID)

	return LoginResult{
		Token:      token,
		User:       user,
		License:    license,
		Activation: outcome.Activation,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, event string, user models.User, license models.License, deviceID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, event, map[string]any{
		"user_id":     user.ID,
		"role":        string(user.Role),
		"license_key": license.Key,
		"device_id":   deviceID,
	})
}
