// Package core - Core Business Logic
// Protocol-agnostic authentication service
// Handles registration (invite-gated), login and JWT token management
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"diario/internal/repository"
	"diario/pkg/models"
	"diario/pkg/utils"
)

// AuthService defines authentication operations
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUserRole(ctx context.Context, userID string, newRole string) error
}

type authService struct {
	userRepo       repository.UserRepository
	inviteRepo     repository.InviteRepository
	inviteRequired bool
	jwtSecret      []byte
	jwtIssuer      string
	jwtExpiry      time.Duration
}

// JWT claims structure
type jwtClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repository.UserRepository,
	inviteRepo repository.InviteRepository,
	inviteRequired bool,
	jwtSecret, jwtIssuer string,
	jwtExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		inviteRepo:     inviteRepo,
		inviteRequired: inviteRequired,
		jwtSecret:      []byte(jwtSecret),
		jwtIssuer:      jwtIssuer,
		jwtExpiry:      jwtExpiry,
	}
}

// Register creates a new user account, consuming an invite code when
// registration is invite-gated
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := models.ValidateRegisterRequest(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), models.ErrInvalidInput)
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return nil, fmt.Errorf("username must be 3-50 alphanumeric characters: %w", models.ErrInvalidInput)
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", models.ErrInvalidInput)
	}

	if s.inviteRequired {
		if req.InviteCode == "" {
			return nil, fmt.Errorf("an invite code is required: %w", models.ErrInvalidInput)
		}
		invite, err := s.inviteRepo.GetByCode(ctx, req.InviteCode)
		if err != nil {
			return nil, err
		}
		if invite.IsUsed() {
			return nil, fmt.Errorf("register: %w", models.ErrInviteUsed)
		}
	}

	exists, err := s.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, models.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleUser,
		CreatedAt:    time.Now(),
	}
	if user.DisplayName == "" {
		user.DisplayName = req.Username
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.inviteRequired {
		// The code burns after the account exists; a consume race at
		// this point leaves an extra account, not a broken one
		if err := s.inviteRepo.Consume(ctx, req.InviteCode, user.ID); err != nil {
			return nil, err
		}
	}

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.LoginResponse{
		Token:     token,
		User:      user.Profile(),
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

// ValidateToken verifies a JWT token and returns the user. The user
// row, role included, is re-read on every call so role changes apply
// without waiting for token expiry.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, models.ErrInvalidToken
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (s *authService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateUserRole updates a user's role (admin only, enforced at the API)
func (s *authService) UpdateUserRole(ctx context.Context, userID string, newRole string) error {
	role := models.UserRole(newRole)
	if role != models.UserRoleUser && role != models.UserRoleAdmin {
		return fmt.Errorf("invalid role %q (must be user or admin): %w", newRole, models.ErrInvalidInput)
	}
	return s.userRepo.UpdateRole(ctx, userID, role)
}

// generateToken creates a new JWT token for a user
func (s *authService) generateToken(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.jwtExpiry)

	claims := &jwtClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.jwtIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}
