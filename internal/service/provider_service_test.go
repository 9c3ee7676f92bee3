package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/llm"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
)

func TestProviderService_List(t *testing.T) {
	t.Run("Offline chain", func(t *testing.T) {
		svc := service.NewProviderService(llm.NewChain(nil, nil, nil), false)

		info, err := svc.List(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{llm.FallbackName}, info.Providers)
		assert.True(t, info.Offline)
		assert.False(t, info.WebSearch)
	})

	t.Run("Configured chain", func(t *testing.T) {
		chain := llm.NewChain([]llm.Provider{llm.NewOllamaProvider("http://127.0.0.1:1", "llama3", "")}, nil, nil)
		svc := service.NewProviderService(chain, true)

		info, err := svc.List(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{llm.OllamaName, llm.FallbackName}, info.Providers)
		assert.False(t, info.Offline)
		assert.True(t, info.WebSearch)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := service.NewProviderService(llm.NewChain(nil, nil, nil), false).List(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
