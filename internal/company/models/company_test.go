package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "orgbook/pkg/domain"
	dErrors "orgbook/pkg/domain-errors"
)

func TestNewCompany_Invariants(t *testing.T) {
	ws := id.WorkspaceID(uuid.New())
	now := time.Now()

	t.Run("accepts a valid company", func(t *testing.T) {
		c, err := NewCompany(ws, "acme.com", "Acme", 1, now)
		require.NoError(t, err)
		assert.Equal(t, "acme.com", c.Domain)
		assert.Equal(t, int64(1), c.Position)
		assert.Equal(t, now, c.CreatedAt)
	})

	t.Run("accepts an empty domain", func(t *testing.T) {
		// Key-less candidates create a single company without a domain.
		_, err := NewCompany(ws, "", "Unknown", 1, now)
		require.NoError(t, err)
	})

	t.Run("rejects a nil workspace", func(t *testing.T) {
		_, err := NewCompany(id.WorkspaceID{}, "acme.com", "Acme", 1, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := NewCompany(ws, "acme.com", "", 1, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects a non-positive position", func(t *testing.T) {
		_, err := NewCompany(ws, "acme.com", "Acme", 0, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestCandidateNormalizedDomain(t *testing.T) {
	assert.Equal(t, "acme.com", Candidate{Domain: "ACME.com/"}.NormalizedDomain())
	assert.Equal(t, "", Candidate{}.NormalizedDomain())
}

func TestCreationSourceValid(t *testing.T) {
	assert.True(t, SourceContactImport.Valid())
	assert.True(t, SourceEmailSync.Valid())
	assert.True(t, SourceManual.Valid())
	assert.True(t, SourceAPI.Valid())
	assert.False(t, CreationSource("webhook").Valid())
	assert.False(t, CreationSource("").Valid())
}
