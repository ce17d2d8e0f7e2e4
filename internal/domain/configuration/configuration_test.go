package configuration

import (
	"errors"
	"testing"

	"github.com/enrolment/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfiguration(t *testing.T) {
	store := uuid.New()
	c, err := NewConfiguration("  grace_days ", "5", &store)
	require.NoError(t, err)
	assert.Equal(t, "grace_days", c.Key)
	assert.Equal(t, "5", c.Value)
	assert.Equal(t, &store, c.StoreID)

	_, err = NewConfiguration(" ", "x", nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}
