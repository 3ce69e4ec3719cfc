package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-photo-share/entity"
)

func TestJobStatusSaveAndGet(t *testing.T) {
	ctx := context.Background()
	mr, cache := newTestRedis(t)
	repo := NewJobStatusRepository(cache, time.Hour)

	jobID := uuid.New()
	require.NoError(t, repo.Save(ctx, entity.JobState{JobID: jobID, Status: entity.JobStatusRunning, Resolution: entity.Resolution1080p}))

	state, err := repo.Get(ctx, jobID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, entity.JobStatusRunning, state.Status)
	assert.NotZero(t, state.UpdatedAt)

	mr.FastForward(2 * time.Hour)

	state, err = repo.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Nil(t, state)
}
