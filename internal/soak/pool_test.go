package soak

import (
	"context"
	"testing"

	"modelbins/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSeedsMatchesSerialRuns(t *testing.T) {
	s := config.SoakSettings{Ticks: 40, SpawnRate: 6, KillRatio: 0.4, Seed: 10}

	results, err := RunSeeds(context.Background(), s, 4, 3)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, int64(10+i), res.Seed)

		serial := s
		serial.Seed = res.Seed
		want, err := Run(context.Background(), serial)
		require.NoError(t, err)
		assert.Equal(t, want.Totals, res.Totals, "seed %d", res.Seed)
	}
}

func TestRunSeedsReportsErrors(t *testing.T) {
	_, err := RunSeeds(context.Background(), config.SoakSettings{}, 2, 2)
	assert.Error(t, err)
}

func TestWorkerPoolQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewWorkerPool(ctx, 0, 1)
	results := make(chan JobResult, 2)
	assert.True(t, pool.SubmitJob(Job{Settings: config.SoakSettings{Ticks: 1}, ResultChan: results}))
	pool.Close()
	assert.LessOrEqual(t, pool.GetQueueLength(), 1)
}
