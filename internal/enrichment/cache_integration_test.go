//go:build integration

package enrichment_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"orgbook/internal/enrichment"
	"orgbook/pkg/testutil/containers"
)

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) TestReadThrough() {
	ctx := context.Background()
	var upstreamCalls atomic.Int32
	lookup := enrichment.LookupFunc(func(_ context.Context, domain string) (enrichment.Profile, error) {
		upstreamCalls.Add(1)
		return enrichment.Profile{Name: "Acme", City: "Berlin"}, nil
	})

	cache := enrichment.NewCache(lookup, s.redis.Client)

	// First lookup hits the upstream and populates the cache.
	profile, err := cache.Lookup(ctx, "acme.com")
	s.Require().NoError(err)
	s.Equal("Acme", profile.Name)
	s.Equal(int32(1), upstreamCalls.Load())

	// Second lookup is served from Redis.
	profile, err = cache.Lookup(ctx, "acme.com")
	s.Require().NoError(err)
	s.Equal("Acme", profile.Name)
	s.Equal("Berlin", profile.City)
	s.Equal(int32(1), upstreamCalls.Load())
}

func (s *CacheSuite) TestFailuresAreNotCached() {
	ctx := context.Background()
	var upstreamCalls atomic.Int32
	lookup := enrichment.LookupFunc(func(_ context.Context, domain string) (enrichment.Profile, error) {
		upstreamCalls.Add(1)
		return enrichment.Profile{}, enrichment.NewLookupError(enrichment.ErrorOutage, domain, "down", nil)
	})

	cache := enrichment.NewCache(lookup, s.redis.Client)

	_, err := cache.Lookup(ctx, "flaky.dev")
	s.Require().Error(err)
	_, err = cache.Lookup(ctx, "flaky.dev")
	s.Require().Error(err)

	// A recovering upstream must be retried on the next batch.
	s.Equal(int32(2), upstreamCalls.Load())
}

func (s *CacheSuite) TestKeylessLookupBypassesCache() {
	ctx := context.Background()
	var upstreamCalls atomic.Int32
	lookup := enrichment.LookupFunc(func(_ context.Context, domain string) (enrichment.Profile, error) {
		upstreamCalls.Add(1)
		return enrichment.Profile{}, nil
	})

	cache := enrichment.NewCache(lookup, s.redis.Client)

	_, err := cache.Lookup(ctx, "")
	s.Require().NoError(err)
	_, err = cache.Lookup(ctx, "")
	s.Require().NoError(err)
	s.Equal(int32(2), upstreamCalls.Load())
}
