package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryOnLock_RetriesLockErrors(t *testing.T) {
	calls := 0
	err := RetryOnLock(func() error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOnLock_StopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("UNIQUE constraint failed: users.username")
	err := RetryOnLock(func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryOnLockWithResult_GivesUpAfterBudget(t *testing.T) {
	calls := 0
	n, err := RetryOnLockWithResult(func() (int, error) {
		calls++
		return calls, errors.New("database is locked")
	})

	assert.True(t, IsLockError(err))
	assert.Equal(t, lockMaxRetries, calls)
	assert.Equal(t, lockMaxRetries, n)
}
