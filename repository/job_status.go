package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tnqbao/gau-photo-share/entity"
	"github.com/tnqbao/gau-photo-share/infra"
)

const jobStatusPrefix = "job:"

type JobStatusRepository struct {
	cache *infra.RedisClient
	ttl   time.Duration
}

func NewJobStatusRepository(cache *infra.RedisClient, ttl time.Duration) *JobStatusRepository {
	return &JobStatusRepository{cache: cache, ttl: ttl}
}

func (r *JobStatusRepository) Save(ctx context.Context, state entity.JobState) error {
	if state.UpdatedAt == 0 {
		state.UpdatedAt = time.Now().Unix()
	}
	return r.cache.Set(ctx, jobStatusPrefix+state.JobID.String(), state, r.ttl)
}

// Get returns nil when the job is unknown or its status has expired.
func (r *JobStatusRepository) Get(ctx context.Context, jobID uuid.UUID) (*entity.JobState, error) {
	var state entity.JobState
	err := r.cache.Get(ctx, jobStatusPrefix+jobID.String(), &state)
	if errors.Is(err, infra.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}
