package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-token-ledger/internal/store"
)

func TestNormalizeConnectionPoolSettings_Defaults(t *testing.T) {
	maxOpen, maxIdle, lifetime, idleTime := store.NormalizeConnectionPoolSettings(0, 0, 0, 0)

	assert.Equal(t, 20, maxOpen)
	assert.Equal(t, 5, maxIdle)
	assert.Equal(t, 5*time.Minute, lifetime)
	assert.Equal(t, 10*time.Minute, idleTime)
}

func TestNormalizeConnectionPoolSettings_ClampsIdleToOpen(t *testing.T) {
	maxOpen, maxIdle, _, _ := store.NormalizeConnectionPoolSettings(3, 10, time.Minute, time.Minute)

	assert.Equal(t, 3, maxOpen)
	assert.Equal(t, 3, maxIdle)
}

func TestNormalizeConnectionPoolSettings_KeepsExplicitValues(t *testing.T) {
	maxOpen, maxIdle, lifetime, idleTime := store.NormalizeConnectionPoolSettings(50, 10, time.Hour, 30*time.Minute)

	assert.Equal(t, 50, maxOpen)
	assert.Equal(t, 10, maxIdle)
	assert.Equal(t, time.Hour, lifetime)
	assert.Equal(t, 30*time.Minute, idleTime)
}
