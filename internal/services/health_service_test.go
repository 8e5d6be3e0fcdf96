package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"edustats/internal/shared/testutil"
	"edustats/pkg/contracts/domain"
)

func TestHealthService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	ctx := context.Background()

	t.Run("loaded table", func(t *testing.T) {
		query := NewQueryService(testutil.CleanRows(), domain.EmptyInsights(), true, logger, nil)
		hs := NewHealthService("1.2.3", query, logger)

		status := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "1.2.3", status.Version)
		assert.Equal(t, 2, status.Countries)
		assert.True(t, status.InsightsAvailable)

		ready, ok := hs.ReadinessCheck(ctx)
		assert.True(t, ok)
		assert.Equal(t, "ready", ready.Status)

		alive := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", alive.Status)
		assert.Contains(t, alive.Runtime, "go_version")
		assert.Contains(t, alive.Runtime, "build")
	})

	t.Run("no table", func(t *testing.T) {
		hs := NewHealthService("1.2.3", nil, nil)

		ready, ok := hs.ReadinessCheck(ctx)
		assert.False(t, ok)
		assert.Equal(t, "not_ready", ready.Status)
		assert.Equal(t, 0, ready.Countries)
	})
}
