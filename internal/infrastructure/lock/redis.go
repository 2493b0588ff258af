package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-audit-api/internal/application/inventory"
)

const (
	lockKeyPrefix      = "lock:item:"
	defaultLockTTL     = 10 * time.Second
	defaultRetryDelay  = 25 * time.Millisecond
	releaseCallTimeout = 2 * time.Second
)

// Solo el dueño del token puede liberar el bloqueo.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

var _ inventory.RecordLocker = (*RedisLocker)(nil)

// RedisLocker bloqueo por artículo compartido entre instancias (SET NX PX + liberación con token).
// El TTL evita bloqueos huérfanos si la instancia muere con el bloqueo tomado.
type RedisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

// NewRedisLocker construye el locker. ttl <= 0 usa 10s.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl, retryDelay: defaultRetryDelay}
}

// Lock intenta SETNX hasta obtener el bloqueo o hasta que ctx termine.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("redis setnx %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseCallTimeout)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
	}, nil
}
