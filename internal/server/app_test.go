package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Storage = config.StorageMemory
	c.EndpointAddrHTTP = "127.0.0.1:0"
	return c
}

func TestLoadKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("ephemeral", func(t *testing.T) {
		keys, err := loadKeys(ctx, memoryConfig(), logging.Nop())
		require.NoError(t, err)
		assert.NotNil(t, keys.Private)
	})

	t.Run("configured", func(t *testing.T) {
		generated, err := auth.GenerateKeys(2048)
		require.NoError(t, err)
		priv, pub, err := generated.Encode()
		require.NoError(t, err)

		c := memoryConfig()
		c.JWTPrivateKey, c.JWTPublicKey = priv, pub
		keys, err := loadKeys(ctx, c, logging.Nop())
		require.NoError(t, err)
		assert.True(t, generated.Public.Equal(keys.Public))
	})

	t.Run("broken", func(t *testing.T) {
		c := memoryConfig()
		c.JWTPrivateKey, c.JWTPublicKey = "bm90IGEga2V5", "bm90IGEga2V5"
		_, err := loadKeys(ctx, c, logging.Nop())
		assert.Error(t, err)
	})
}

func TestNewApp_StorageError(t *testing.T) {
	orig := openRepositories
	t.Cleanup(func() { openRepositories = orig })
	openRepositories = func(context.Context, *config.Config, logging.Logger) (repomanager.RepositoryManager, error) {
		return nil, errors.New("dial tcp: refused")
	}

	_, err := NewApp(context.Background(), memoryConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
