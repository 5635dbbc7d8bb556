package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrProjectBusy 同一项目已经有一次计算在进行中
var ErrProjectBusy = errors.New("项目正在计算中，请稍后再试")

// 只有持有锁的请求才能释放锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func runLockKey(projectID int64) string {
	return fmt.Sprintf("project_run_lock_%d", projectID)
}

// acquireRunLock 获取项目的计算锁，返回释放锁的函数
func acquireRunLock(ctx context.Context, rdb *redis.Client, projectID int64, ttl time.Duration) (func(context.Context) error, error) {
	key := runLockKey(projectID)
	token := uuid.NewString()

	ok, err := rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProjectBusy
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, rdb, []string{key}, token).Err()
	}, nil
}
