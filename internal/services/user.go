package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/screwfx/storefront-platform/internal/config"
	"github.com/screwfx/storefront-platform/internal/errors"
	"github.com/screwfx/storefront-platform/internal/models"
	repository "github.com/screwfx/storefront-platform/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, page, size int) ([]*models.User, int, error)
	DeleteUser(ctx context.Context, callerID, id uuid.UUID) error
}

type userService struct {
	userRepo repository.UserRepository
	rateRepo repository.RateLimitRepository
	security config.Security
}

func NewUserService(userRepo repository.UserRepository, rateRepo repository.RateLimitRepository, security config.Security) UserService {
	return &userService{userRepo: userRepo, rateRepo: rateRepo, security: security}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	if _, err := s.userRepo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, errors.DuplicateEntryError("Email is already registered")
	} else if !stdErrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to check existing user").WithError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalError("Failed to hash password").WithError(err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

// Login checks the rate limit before the credentials, so brute forcing a
// password costs attempts even when the email does not exist.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateRepo.Allow(ctx, repository.ScopeLogin, req.Email)
	if err != nil {
		return nil, errors.InternalError("Failed to check rate limit").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			RetryAfter: retryAfter,
			Message:    fmt.Sprintf("Too many login attempts. Try again in %d seconds.", retryAfter),
		}, errors.TooManyRequestsError("Too many login attempts")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return &models.LoginResponse{Success: false, RemainingTries: remaining, Message: "Invalid credentials"},
				errors.UnauthorizedError("Invalid credentials")
		}
		return nil, errors.DatabaseError("Failed to fetch user").WithError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return &models.LoginResponse{Success: false, RemainingTries: remaining, Message: "Invalid credentials"},
			errors.UnauthorizedError("Invalid credentials")
	}

	claims := models.Claims{
		UserID:  user.ID,
		Email:   user.Email,
		IsStaff: user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.security.JWTKey))
	if err != nil {
		return nil, errors.InternalError("Failed to sign token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     signed,
		ExpiresIn: int(tokenLifetime.Seconds()),
	}, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("User not found")
		}
		return nil, errors.DatabaseError("Failed to fetch user").WithError(err)
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, page, size int) ([]*models.User, int, error) {

	if page < 1 {
		page = 1
	}

	if size < 1 || size > 100 {
		size = 20
	}

	users, total, err := s.userRepo.ListUsers(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list users").WithError(err)
	}

	return users, total, nil
}

// DeleteUser removes an account. Staff cannot delete themselves; that keeps
// at least one working admin session around after a cleanup sweep.
func (s *userService) DeleteUser(ctx context.Context, callerID, id uuid.UUID) error {

	if callerID == id {
		return errors.ForbiddenError("You cannot delete your own account")
	}

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("User not found")
		}
		return errors.DatabaseError("Failed to delete user").WithError(err)
	}

	return nil
}
