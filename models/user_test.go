package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PasswordNotSerialized(t *testing.T) {
	user := User{ID: 7, Username: "alice", Password: "p1"}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"username":"alice"`)
	assert.NotContains(t, string(data), "p1")
}

func TestUser_SessionUser(t *testing.T) {
	user := &User{ID: 3, Username: "bob", Password: "secret"}

	su := user.SessionUser()

	assert.Equal(t, int64(3), su.ID)
	assert.Equal(t, "bob", su.Username)
}
