package service_test

import (
	"context"
	"testing"

	"github.com/appdotbuilder/purchase-approval-platform/internal/service"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo)

	user, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		Email: "jane@corp.test",
		Name:  "Jane",
		Role:  "approver",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@corp.test", user.Email)
	assert.Equal(t, "approver", user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.CreatedAt)
}

func TestCreateUser_InvalidRoleRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		Email: "jane@corp.test",
		Name:  "Jane",
		Role:  "admin",
	})

	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateUser_MalformedEmailRejected(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		Email: "not-an-email",
		Name:  "Jane",
		Role:  "employee",
	})

	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateUser_DuplicateEmailSurfacesUniqueViolation(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), service.CreateUserRequest{
		Email: "jane@corp.test",
		Name:  "Jane",
		Role:  "employee",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(context.Background(), service.CreateUserRequest{
		Email: "jane@corp.test",
		Name:  "Jane Again",
		Role:  "approver",
	})
	assert.True(t, apperrors.IsUniqueViolation(err))

	// No second user was persisted.
	users, total, listErr := svc.ListUsers(context.Background(), 1, 10)
	require.NoError(t, listErr)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)
}
