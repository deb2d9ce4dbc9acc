package service

import (
	"context"
	"net/mail"
	"strings"

	"algoprep/internal/common"
	"algoprep/internal/common/security"
	"algoprep/internal/domain/model"
	"algoprep/internal/domain/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const minPasswordLength = 6

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, errors.Wrap(common.ErrBadRequest, "username, email and password are required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, errors.Wrap(common.ErrValidation, "email address is not valid")
	}
	if len(req.Password) < minPasswordLength {
		return nil, errors.Wrapf(common.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	login := strings.TrimSpace(req.LoginField)
	if login == "" || req.Password == "" {
		return nil, errors.Wrap(common.ErrBadRequest, "login_field and password are required")
	}

	// Email first, then username.
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(login))
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, errors.Wrap(err, "failed to find user")
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResponse, error) {
	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate token")
	}
	return &AuthResponse{User: user.Public(), Token: token}, nil
}
