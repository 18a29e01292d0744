package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbonduro/konsinyasi/internal/auth"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

type configRepository interface {
	GetAdmin(ctx context.Context) (*domain.AdminConfig, error)
	SaveAdmin(ctx context.Context, passwordHash string) error
	EnsureAdmin(ctx context.Context, passwordHash string) (bool, error)
}

// Session is a signed token handed to a client.
type Session struct {
	Token     string    `json:"token"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminService signs clients in and guards the admin gate.
type AdminService struct {
	config configRepository
	issuer *auth.Issuer
	logger *slog.Logger
}

func NewAdminService(config configRepository, issuer *auth.Issuer, logger *slog.Logger) *AdminService {
	return &AdminService{config: config, issuer: issuer, logger: logger}
}

// Bootstrap creates the admin record with defaultPassword if none exists yet.
func (s *AdminService) Bootstrap(ctx context.Context, defaultPassword string) error {
	hash, err := auth.HashPassword(defaultPassword)
	if err != nil {
		return err
	}
	created, err := s.config.EnsureAdmin(ctx, hash)
	if err != nil {
		return err
	}
	if created {
		s.logger.Warn("admin password initialised to the configured default; change it")
	}
	return nil
}

// SignIn issues a staff session to any caller.
func (s *AdminService) SignIn() (*Session, error) {
	return s.issue(auth.RoleStaff)
}

// Unlock issues an admin session when password matches.
func (s *AdminService) Unlock(ctx context.Context, password string) (*Session, error) {
	if err := s.verify(ctx, password); err != nil {
		return nil, err
	}
	s.logger.Info("admin unlocked")
	return s.issue(auth.RoleAdmin)
}

// ChangePassword replaces the admin password. The current password must
// match and the new one must be at least auth.MinPasswordLength long.
func (s *AdminService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return domain.NewValidationError("new", "new password must be at least 6 characters")
	}
	if err := s.verify(ctx, oldPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.config.SaveAdmin(ctx, hash); err != nil {
		return err
	}
	s.logger.Info("admin password changed")
	return nil
}

func (s *AdminService) verify(ctx context.Context, password string) error {
	cfg, err := s.config.GetAdmin(ctx)
	if err != nil {
		return err
	}
	if cfg == nil || !auth.CheckPassword(password, cfg.PasswordHash) {
		return domain.ErrWrongPassword
	}
	return nil
}

func (s *AdminService) issue(role auth.Role) (*Session, error) {
	token, expires, err := s.issuer.Issue(role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Role: role, ExpiresAt: expires}, nil
}
