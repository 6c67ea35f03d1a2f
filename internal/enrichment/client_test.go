package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgbook/pkg/platform/circuit"
)

func TestClientLookup(t *testing.T) {
	t.Run("decodes a full profile", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/companies/acme.com", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name": "Acme Corporation", "city": "Berlin"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		profile, err := client.Lookup(context.Background(), "acme.com")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corporation", profile.Name)
		assert.Equal(t, "Berlin", profile.City)
	})

	t.Run("tolerates missing fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"city": "Lisbon"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		profile, err := client.Lookup(context.Background(), "beta.io")
		require.NoError(t, err)
		assert.Empty(t, profile.Name)
		assert.Equal(t, "Lisbon", profile.City)
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"name": "Acme", "employees": 500, "tags": ["crm"]}`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		profile, err := client.Lookup(context.Background(), "acme.com")
		require.NoError(t, err)
		assert.Equal(t, "Acme", profile.Name)
	})

	t.Run("categorizes malformed responses as bad data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Lookup(context.Background(), "acme.com")
		require.Error(t, err)
		assert.Equal(t, ErrorBadData, CategoryOf(err))
	})

	t.Run("categorizes 404 as not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Lookup(context.Background(), "nobody.dev")
		require.Error(t, err)
		assert.Equal(t, ErrorNotFound, CategoryOf(err))
	})

	t.Run("categorizes 5xx as outage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		_, err := client.Lookup(context.Background(), "acme.com")
		require.Error(t, err)
		assert.Equal(t, ErrorOutage, CategoryOf(err))
	})

	t.Run("categorizes a slow upstream as timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(server.URL, WithTimeout(20*time.Millisecond))
		_, err := client.Lookup(context.Background(), "slow.dev")
		require.Error(t, err)
		assert.Equal(t, ErrorTimeout, CategoryOf(err))
	})

	t.Run("rejects empty domains locally", func(t *testing.T) {
		client := NewClient("http://unused.test")
		_, err := client.Lookup(context.Background(), "")
		require.Error(t, err)
		assert.Equal(t, ErrorNotFound, CategoryOf(err))
	})
}

func TestClientCircuitBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breaker := circuit.New("enrichment-test", circuit.WithFailureThreshold(2))
	client := NewClient(server.URL, WithBreaker(breaker))

	// Two failures open the circuit.
	_, err := client.Lookup(context.Background(), "acme.com")
	require.Error(t, err)
	_, err = client.Lookup(context.Background(), "acme.com")
	require.Error(t, err)
	require.True(t, breaker.IsOpen())

	// While open, lookups fail fast without hitting the upstream.
	_, err = client.Lookup(context.Background(), "acme.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, ErrorOutage, CategoryOf(err))
}
