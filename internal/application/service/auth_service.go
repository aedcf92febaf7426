package service

import (
	"context"

	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
	"github.com/jkorir/sellpoint-api/pkg/utils"
)

// AuthService handles staff authentication
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult carries the issued token and the authenticated staff member
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *entity.User `json:"user"`
}

// Login authenticates a staff member and issues an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.CheckPassword(input.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, apperror.NewServerError("Failed to generate access token")
	}
	return &LoginResult{
		AccessToken: token,
		User:        user,
	}, nil
}
