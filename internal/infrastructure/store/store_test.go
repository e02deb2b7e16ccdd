package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsales/catalog-api/internal/pkg/config"
)

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		Env:   "test",
		Store: config.StoreConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"},
	}

	s, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	assert.NoError(t, s.Pinger.Ping(context.Background()))

	n, err := s.Listings.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "oracle"}}

	_, err := Open(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestClose_NoopWithoutConnection(t *testing.T) {
	assert.NoError(t, (&Stores{}).Close(context.Background()))
}
