package app

import (
	"database/sql"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/message_broaker"
	"github.com/redis/go-redis/v9"
	"github.com/viant/afs"
)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	db         *sql.DB
	identityDB *sql.DB
	redis      *redis.Client
	fs         afs.Service
	broker     message_broaker.MessageBroker
}

// WithDB injects the postgres connection used by the postgres storage driver.
func WithDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.db = db
	}
}

// WithIdentityDB injects the connection holding rules, violations and plans.
func WithIdentityDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.identityDB = db
	}
}

// WithRedis injects a custom Redis client. Useful for testing.
func WithRedis(redis *redis.Client) ContainerOption {
	return func(c *containerConfig) {
		c.redis = redis
	}
}

// WithFileSystem replaces the afs service behind the file system driver.
func WithFileSystem(fs afs.Service) ContainerOption {
	return func(c *containerConfig) {
		c.fs = fs
	}
}

// WithMessageBroker injects the broker audit records are published to.
func WithMessageBroker(broker message_broaker.MessageBroker) ContainerOption {
	return func(c *containerConfig) {
		c.broker = broker
	}
}
