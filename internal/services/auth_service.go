// Package services implements the business logic of the shop
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/auth/service"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// authService implements the signup, login and identity flows
type authService struct {
	userRepo       UserRepository
	roleRepo       RoleRepository
	tokenGenerator *service.TokenGenerator
	hasher         *service.PasswordHasher
	logger         *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	roleRepo RoleRepository,
	tokenGenerator *service.TokenGenerator,
	hasher *service.PasswordHasher,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		tokenGenerator: tokenGenerator,
		hasher:         hasher,
		logger:         logger,
	}
}

func normalizeCredentials(creds models.Credentials) (models.Credentials, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return creds, apperrors.ErrMissingCredentials
	}
	return creds, nil
}

// Signup creates a user account with the default non-privileged role
func (s *authService) Signup(ctx context.Context, creds models.Credentials) (*models.User, error) {
	creds, err := normalizeCredentials(creds)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, creds.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	hash, err := s.hasher.HashPassword(creds.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	roleID := models.RoleIDUser
	user := &models.User{
		Email:    creds.Email,
		Password: hash,
		RoleID:   &roleID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", zap.Int("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and issues an access token
func (s *authService) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	creds, err := normalizeCredentials(creds)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.ComparePassword(creds.Password, user.Password)
	if err != nil {
		s.logger.Error("failed to compare password", zap.Error(err), zap.Int("user_id", user.ID))
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidPassword
	}

	role, err := s.findRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokenGenerator.GenerateToken(user.Email)
	if err != nil {
		s.logger.Error("failed to generate token", zap.Error(err), zap.Int("user_id", user.ID))
		return nil, err
	}

	var roles *models.RoleResponse
	if role != nil {
		if roles, err = role.Response(); err != nil {
			return nil, err
		}
	}

	return &models.LoginResponse{
		Token: token,
		ID:    user.ID,
		Email: user.Email,
		Roles: roles,
	}, nil
}

// findRole returns the user's role; a missing or dangling role reference means no role
func (s *authService) findRole(ctx context.Context, roleID *int) (*models.Role, error) {
	if roleID == nil {
		return nil, nil
	}
	role, err := s.roleRepo.FindByID(ctx, *roleID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			s.logger.Warn("user references a missing role", zap.Int("role_id", *roleID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find role: %w", err)
	}
	return role, nil
}

// ResolveIdentity loads the user with the given email and the roles it holds
func (s *authService) ResolveIdentity(ctx context.Context, email string) (*models.Identity, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{
		ID:          user.ID,
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: []string{},
	}

	role, err := s.findRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if role != nil {
		identity.Role = role.NameEn
		if identity.Permissions, err = role.PermissionList(); err != nil {
			return nil, err
		}
	}

	return identity, nil
}

// GetProfile returns the public view of the authenticated caller
func (s *authService) GetProfile(ctx context.Context, identity *models.Identity) (*models.ProfileResponse, error) {
	if identity == nil {
		return nil, apperrors.ErrAuthRequired
	}
	return identity.Profile(), nil
}
