package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/pkg/errors"
	"tambo-herd/pkg/jwt"
)

// UserRepository is what the auth service needs from identity storage.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*aggregate.User, error)
	GetByID(ctx context.Context, id string) (*aggregate.User, error)
	Create(ctx context.Context, user *aggregate.User) error
}

// AuthService handles login and team-member management.
type AuthService struct {
	users  UserRepository
	tokens *jwt.Manager
	logger *zap.Logger
}

func NewAuthService(users UserRepository, tokens *jwt.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string          `json:"token"`
	User  *aggregate.User `json:"user"`
}

// Login verifies credentials and issues a token. Wrong email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, errors.NewValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to look up user")
	}
	if user == nil {
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errors.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		s.logger.Error("token generation failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, errors.NewInternalError("failed to issue token")
	}
	return &LoginResult{Token: token, User: user}, nil
}

// CreateUserParams is the admin-entered data for a new team member.
type CreateUserParams struct {
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Password        string             `json:"password"`
	Role            aggregate.UserRole `json:"role"`
	EstablishmentID string             `json:"establishment_id"`
}

// CreateUser registers a team member. Only admins may call it.
func (s *AuthService) CreateUser(ctx context.Context, callerRole aggregate.UserRole, p CreateUserParams) (*aggregate.User, error) {
	if callerRole != aggregate.RoleAdmin {
		return nil, errors.NewForbiddenError("only admins can create users")
	}
	if p.Email == "" || p.Password == "" {
		return nil, errors.NewValidationError("email and password are required")
	}
	switch p.Role {
	case aggregate.RoleAdmin, aggregate.RoleManager, aggregate.RoleWorker:
	default:
		return nil, errors.NewValidationError("unknown role: " + string(p.Role))
	}

	existing, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to look up user")
	}
	if existing != nil {
		return nil, errors.NewConflictError("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password")
	}

	user := &aggregate.User{
		ID:              uuid.NewString(),
		Email:           p.Email,
		Name:            p.Name,
		PasswordHash:    string(hash),
		Role:            p.Role,
		EstablishmentID: p.EstablishmentID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.NewInternalError("failed to create user")
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// EnsureAdmin seeds the bootstrap admin account when no user owns the given
// email yet. Deployments call it once at startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, establishmentID string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil || existing != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &aggregate.User{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            "Administrator",
		PasswordHash:    string(hash),
		Role:            aggregate.RoleAdmin,
		EstablishmentID: establishmentID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
