package repository

import (
	"context"
	"encoding/json"
	"time"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// RunStore keeps asynchronous run jobs in Redis; they expire after a TTL.
type RunStore interface {
	Save(ctx context.Context, job *model.RunJob) error
	Get(ctx context.Context, id string) (*model.RunJob, error)
}

type redisRunStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisRunStore(rdb redis.Cmdable, ttl time.Duration) RunStore {
	return &redisRunStore{rdb: rdb, ttl: ttl}
}

func runJobKey(id string) string { return "run_job:" + id }

func (s *redisRunStore) Save(ctx context.Context, job *model.RunJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "redisRunStore.Save marshal")
	}
	if err := s.rdb.Set(ctx, runJobKey(job.ID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redisRunStore.Save")
	}
	return nil
}

func (s *redisRunStore) Get(ctx context.Context, id string) (*model.RunJob, error) {
	data, err := s.rdb.Get(ctx, runJobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, errors.Wrap(err, "redisRunStore.Get")
	}
	job := &model.RunJob{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, errors.Wrapf(err, "redisRunStore.Get decode %s", id)
	}
	return job, nil
}
