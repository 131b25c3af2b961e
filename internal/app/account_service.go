package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"performer-marketplace/internal/core/domain"
	"performer-marketplace/internal/core/ports"
)

// accountService implements the AccountService port. New accounts always
// start as clients; the vetting pipeline is the only path to the
// performer role.
type accountService struct {
	store  ports.Store
	logger *slog.Logger
}

func NewAccountService(store ports.Store, logger *slog.Logger) ports.AccountService {
	return &accountService{store: store, logger: logger}
}

func (s *accountService) Register(ctx context.Context, username, phone, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.New(),
		Username:     username,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleClient,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.store.Audit(), s.logger, user.ID, domain.AuditRegisterUser, "users", user.ID, map[string]any{
		"username": username,
	})

	return &user, nil
}

func (s *accountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}
