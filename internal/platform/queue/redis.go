package queue

import (
	"context"
	"log"
	"time"

	"algoprep/internal/platform/config"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	log.Println("INFO: Connected to Redis.")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		log.Println("INFO: Redis connection closed.")
	}
}

// JobQueue is a FIFO of job ids on a Redis list: LPUSH to enqueue, BRPOP to take.
type JobQueue struct {
	rdb  redis.Cmdable
	name string
}

func NewJobQueue(rdb redis.Cmdable, name string) *JobQueue {
	return &JobQueue{rdb: rdb, name: name}
}

func (q *JobQueue) Name() string { return q.name }

func (q *JobQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.rdb.LPush(ctx, q.name, jobID).Err(); err != nil {
		return errors.Wrapf(err, "enqueue job %s on %s", jobID, q.name)
	}
	return nil
}

// Requeue puts a job at the consuming end so it is retried next.
func (q *JobQueue) Requeue(ctx context.Context, jobID string) error {
	if err := q.rdb.RPush(ctx, q.name, jobID).Err(); err != nil {
		return errors.Wrapf(err, "requeue job %s on %s", jobID, q.name)
	}
	return nil
}

// Pop blocks up to timeout (0 waits forever) for the next job id. It returns
// redis.Nil when the wait times out.
func (q *JobQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		return "", err
	}
	// BRPOP answers [queueName, value].
	if len(res) < 2 || res[1] == "" {
		return "", errors.New("empty job id popped")
	}
	return res[1], nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Lock is a single-holder Redis lock taken with SET NX PX and released only by the
// holder.
type Lock struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

func NewLock(rdb redis.Cmdable, key string, ttl time.Duration) *Lock {
	return &Lock{rdb: rdb, key: key, ttl: ttl}
}

// Acquire reports false without error when someone else holds the lock.
func (l *Lock) Acquire(ctx context.Context, token string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "acquire lock %s", l.key)
	}
	return ok, nil
}

// Release deletes the lock if token still owns it and reports whether it did.
func (l *Lock) Release(ctx context.Context, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Int64()
	if err != nil {
		return false, errors.Wrapf(err, "release lock %s", l.key)
	}
	return n == 1, nil
}
