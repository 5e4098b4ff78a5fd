package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yashrajoria/shoptube-backend/common/auth"
	"github.com/yashrajoria/shoptube-backend/models"
	"github.com/yashrajoria/shoptube-backend/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 10

	msgInvalidCredentials = "Invalid email or password"
	msgSellerPending      = "Your seller account is pending approval. You'll be notified once it's approved."
	msgSellerApplied      = "Your seller application has been submitted for review. You'll be notified once it's approved."
	msgAccountCreated     = "Account created successfully."
)

// TokenRevoker records and checks revoked token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthService handles accounts, credentials and sessions.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResult, *ServiceError)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, *ServiceError)
	Logout(ctx context.Context, token string) *ServiceError
	Authenticate(ctx context.Context, token string) (*auth.Claims, *ServiceError)
	GetProfile(ctx context.Context, userID string) (*models.User, *ServiceError)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, *ServiceError)
	ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) *ServiceError
}

type authServiceImpl struct {
	users     repository.UserRepository
	profiles  repository.SellerProfileRepository
	tokens    *auth.TokenManager
	revoker   TokenRevoker
	passwords *PasswordValidator
	events    EventPublisher
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users repository.UserRepository,
	profiles repository.SellerProfileRepository,
	tokens *auth.TokenManager,
	revoker TokenRevoker,
	events EventPublisher,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		users:     users,
		profiles:  profiles,
		tokens:    tokens,
		revoker:   revoker,
		passwords: NewPasswordValidator(),
		events:    events,
		logger:    logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResult, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, badRequest("Name, email, password and role are required")
	}
	if req.Role != models.RoleCustomer && req.Role != models.RoleSeller {
		return nil, badRequest("Role must be customer or seller")
	}
	if req.Role == models.RoleSeller && strings.TrimSpace(req.BusinessName) == "" {
		return nil, badRequest("Business name is required for sellers")
	}
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, badRequest(err.Error())
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, conflict("Email already in use")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, internal("Failed to create account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, internal("Failed to create account")
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		Role:         req.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Email already in use")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, internal("Failed to create account")
	}

	if user.Role == models.RoleSeller {
		profile, err := s.profiles.Create(ctx, &models.SellerProfile{
			UserID:       user.ID,
			BusinessName: strings.TrimSpace(req.BusinessName),
			Description:  strings.TrimSpace(req.BusinessDescription),
		})
		if err != nil {
			s.logger.Error("Failed to create seller profile", zap.String("user_id", user.ID), zap.Error(err))
			// Keep the email free for another attempt.
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				s.logger.Error("Failed to remove user after profile failure", zap.String("user_id", user.ID), zap.Error(delErr))
			}
			return nil, internal("Failed to create seller profile")
		}
		s.events.Publish(ctx, models.Event{
			EventType:  models.EventSellerApplied,
			UserID:     user.ID,
			SellerID:   user.ID,
			SellerName: profile.BusinessName,
		})
		s.logger.Info("Seller application submitted", zap.String("user_id", user.ID))
		return &models.AuthResult{User: user, Message: msgSellerApplied}, nil
	}

	token, svcErr := s.issue(user)
	if svcErr != nil {
		return nil, svcErr
	}
	s.logger.Info("Customer signed up", zap.String("user_id", user.ID))
	return &models.AuthResult{User: user, Token: token, Message: msgAccountCreated}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorized(msgInvalidCredentials)
		}
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, internal("Login failed")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, unauthorized(msgInvalidCredentials)
	}

	if user.Role == models.RoleSeller {
		profile, err := s.profiles.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to load seller profile", zap.String("user_id", user.ID), zap.Error(err))
			return nil, internal("Login failed")
		}
		if profile == nil || !profile.IsApproved {
			return nil, forbidden(msgSellerPending)
		}
	}

	token, svcErr := s.issue(user)
	if svcErr != nil {
		return nil, svcErr
	}
	return &models.AuthResult{User: user, Token: token}, nil
}

func (s *authServiceImpl) issue(user *models.User) (string, *ServiceError) {
	token, _, err := s.tokens.Issue(auth.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
	if err != nil {
		s.logger.Error("Failed to issue token", zap.String("user_id", user.ID), zap.Error(err))
		return "", internal("Failed to create session")
	}
	return token, nil
}

// Logout revokes the token until it would have expired. An unparseable token
// is already useless, so it is not an error.
func (s *authServiceImpl) Logout(ctx context.Context, token string) *ServiceError {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.ParseAndValidateToken(token, auth.TokenTypeAccess)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("user_id", claims.ID), zap.Error(err))
		return internal("Failed to log out")
	}
	return nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*auth.Claims, *ServiceError) {
	if token == "" {
		return nil, unauthorized("Authentication required")
	}
	claims, err := s.tokens.ParseAndValidateToken(token, auth.TokenTypeAccess)
	if err != nil {
		return nil, unauthorized("Invalid or expired token")
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		s.logger.Warn("Token denylist check failed", zap.Error(err))
	}
	if revoked {
		return nil, unauthorized("Token has been revoked")
	}
	return claims, nil
}

func (s *authServiceImpl) GetProfile(ctx context.Context, userID string) (*models.User, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		s.logger.Error("Failed to load user", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to load profile")
	}
	return user, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" {
		return nil, badRequest("Name and email are required")
	}

	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing.ID != userID {
		return nil, conflict("Email already in use")
	}

	user, err := s.users.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("User not found")
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflict("Email already in use")
		}
		s.logger.Error("Failed to update profile", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to update profile")
	}
	return user, nil
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, userID string, req *models.ChangePasswordRequest) *ServiceError {
	user, svcErr := s.GetProfile(ctx, userID)
	if svcErr != nil {
		return svcErr
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return badRequest("Current password is incorrect")
	}
	if err := s.passwords.ValidatePassword(req.NewPassword); err != nil {
		return badRequest(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return internal("Failed to update password")
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		s.logger.Error("Failed to update password", zap.String("user_id", userID), zap.Error(err))
		return internal("Failed to update password")
	}
	s.logger.Info("Password changed", zap.String("user_id", userID))
	return nil
}
