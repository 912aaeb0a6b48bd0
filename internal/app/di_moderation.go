package app

import (
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/questionit/api/internal/banlist"
	"github.com/questionit/api/internal/moderation"
)

// moderationComponents holds the shared moderation state. Holders are singletons so the
// refresher reloads the same snapshots the engine and the ban checks read.
type moderationComponents struct {
	banList     *banlist.Holder
	dictionary  *moderation.DictionaryHolder
	pool        *moderation.Pool
	engine      *moderation.Engine
	redisClient *redis.Client
	refresher   *moderation.Refresher

	banListInit    sync.Once
	dictionaryInit sync.Once
	engineInit     sync.Once
	redisInit      sync.Once
	refresherInit  sync.Once
}

// BanList returns the ban list holder. It serves an empty list until the first reload.
func (c *Container) BanList() *banlist.Holder {
	c.moderation.banListInit.Do(func() {
		c.moderation.banList = banlist.NewHolder(banlist.Options{
			Path:       c.config.BanListPath,
			TorEnabled: c.config.TorExitListEnabled,
			TorURL:     c.config.TorExitListURL,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
			Logger:     c.Logger(),
		})
	})
	return c.moderation.banList
}

// Dictionary returns the muted-words dictionary holder.
func (c *Container) Dictionary() *moderation.DictionaryHolder {
	c.moderation.dictionaryInit.Do(func() {
		c.moderation.dictionary = moderation.NewDictionaryHolder(c.config.MutedWordsPath, c.Logger())
	})
	return c.moderation.dictionary
}

// ModerationEngine returns the engine matching questions on the moderation worker pool.
func (c *Container) ModerationEngine() *moderation.Engine {
	c.moderation.engineInit.Do(func() {
		c.moderation.pool = moderation.NewPool(moderation.PoolOptions{
			Size:           c.config.ModerationPoolSize,
			SpawnThreshold: c.config.ModerationSpawnThreshold,
			IdleTimeout:    c.config.ModerationIdleTimeout,
			Logger:         c.Logger(),
		})
		c.moderation.engine = moderation.NewEngine(c.moderation.pool, c.Dictionary())
	})
	return c.moderation.engine
}

// RedisClient returns the client carrying refresh signals, or nil when REDIS_ADDR is empty.
func (c *Container) RedisClient() *redis.Client {
	c.moderation.redisInit.Do(func() {
		if c.config.RedisAddr == "" {
			return
		}
		c.moderation.redisClient = redis.NewClient(&redis.Options{
			Addr:     c.config.RedisAddr,
			Password: c.config.RedisPassword,
			DB:       c.config.RedisDB,
		})
	})
	return c.moderation.redisClient
}

// ModerationRefresher returns the job reloading the dictionary and the ban list.
func (c *Container) ModerationRefresher() *moderation.Refresher {
	c.moderation.refresherInit.Do(func() {
		c.moderation.refresher = moderation.NewRefresher(
			c.RedisClient(),
			c.config.ModerationRefreshChannel,
			c.config.ModerationRefreshInterval,
			c.Logger(),
			c.Dictionary(),
			c.BanList(),
		)
	})
	return c.moderation.refresher
}
