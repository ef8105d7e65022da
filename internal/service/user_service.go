package service

import (
	"context"
	"regexp"
	"time"

	"github.com/appdotbuilder/purchase-approval-platform/internal/model"
	"github.com/appdotbuilder/purchase-approval-platform/internal/repository"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/apperrors"

	"github.com/google/uuid"
)

// DTOs for request validation
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role" binding:"required,oneof=employee approver"`
}

// UserResponse is the API shape of a User.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
}

// UserService defines the interface for business logic related to User.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func toUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := model.Role(req.Role)
	if !role.Valid() {
		return nil, apperrors.Validation("role", "must be employee or approver")
	}

	if !emailRegex.MatchString(req.Email) {
		return nil, apperrors.Validation("email", "malformed email address")
	}

	if req.Name == "" {
		return nil, apperrors.Validation("name", "must not be empty")
	}

	// Friendly pre-check; the store's unique index is the real guarantee and
	// surfaces the same typed error if a concurrent insert wins.
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, &apperrors.UniqueError{Field: "email", Value: req.Email}
	}

	user := &model.User{
		Email: req.Email,
		Name:  req.Name,
		Role:  role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *toUserResponse(&users[i]))
	}

	return responses, total, nil
}
