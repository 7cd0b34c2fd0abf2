package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hostadmin-backend/internal/config"
	"hostadmin-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client is nil when REDIS_ADDR is unset; every helper degrades to a no-op
// so the auth middleware falls back to the database.
var Client *redis.Client

const userTTL = 30 * time.Second

func Init(cfg *config.Config) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("redis not configured, user cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, user cache disabled")
		return
	}

	Client = client
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis user cache enabled")
}

func userKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// GetUser returns the cached user with roles and permissions, or false on
// miss, disabled cache, or any redis error.
func GetUser(ctx context.Context, id uint) (*models.User, bool) {
	if Client == nil {
		return nil, false
	}

	raw, err := Client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

func SetUser(ctx context.Context, user *models.User) {
	if Client == nil || user == nil {
		return
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := Client.Set(ctx, userKey(user.ID), raw, userTTL).Err(); err != nil {
		log.Debug().Err(err).Uint("user_id", user.ID).Msg("user cache set failed")
	}
}

// InvalidateUser drops the cached entry. Called after any mutation that
// changes identity, roles or status.
func InvalidateUser(ctx context.Context, id uint) {
	if Client == nil {
		return
	}
	if err := Client.Del(ctx, userKey(id)).Err(); err != nil {
		log.Debug().Err(err).Uint("user_id", id).Msg("user cache invalidation failed")
	}
}
