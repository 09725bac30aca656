package testutils

import (
	"context"
	"testing"

	"bank-auth/db"
	"bank-auth/models"

	"github.com/stretchr/testify/require"
)

func CreateTestUser(t *testing.T, repo db.UserRepository, username, password string) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &models.User{Username: username, Password: password})
	require.NoError(t, err)
	return user
}
