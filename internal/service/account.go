package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/skorin/webshop/internal/auth"
	"github.com/skorin/webshop/internal/logging"
	"github.com/skorin/webshop/internal/models"
	"github.com/skorin/webshop/internal/repo"
)

type AccountService struct {
	Repo   *repo.GormRepo
	Issuer *auth.TokenIssuer
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates the account and its default shipping address, the side
// effect new accounts have always had.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "required"
	}
	if len(in.Password) < 8 {
		errs["password"] = "must be at least 8 characters"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{Username: in.Username, Email: in.Email, PasswordHash: hash, Role: "user"}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username taken", ErrConflict)
		}
		return nil, err
	}

	if err := s.Repo.EnsureDefaultShippingAddress(ctx, u.ID); err != nil {
		logging.FromContext(ctx).Error("create default shipping address failed", "user_id", u.ID, "error", err)
	}
	return u, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.Repo.GetUserByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: bad credentials", ErrValidation)
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", fmt.Errorf("%w: bad credentials", ErrValidation)
	}
	return s.Issuer.Issue(u)
}
