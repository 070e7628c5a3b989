package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrRookie-AIR/PushupsbyArduino/client"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/audit"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/db"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/lock"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/message_broaker"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store/fs"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store/postgres"
	redisstore "github.com/MrRookie-AIR/PushupsbyArduino/internal/store/redis"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/transport"
	"github.com/MrRookie-AIR/PushupsbyArduino/types/config"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/viant/afs"
)

// Container holds all application dependencies. It is the single source of truth
// for dependency injection and ensures connections and services are created once.
type Container struct {
	Config *config.PushupConfig

	// Storage connections (created once, shared by all stores)
	DB         *sql.DB
	IdentityDB *sql.DB
	Redis      *redis.Client

	Markers  store.MarkerStore
	Identity postgres.IdentityStore

	// Infrastructure
	LockManager   lock.DistributedLockManager
	MessageBroker message_broaker.MessageBroker
	Recorder      audit.Recorder

	Busy     *client.BusyTracker
	Resolver *client.IdentityResolver
	Queue    *client.AdmissionQueue
	Status   *client.StatusReporter
}

// NewContainer creates and wires all dependencies. Single entry point for DI.
// Pass optional WithDB, WithIdentityDB, WithRedis to inject connections for testing.
func NewContainer(ctx context.Context, cfg *config.PushupConfig, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}
	c := &Container{Config: cfg, DB: opt.db, Redis: opt.redis, MessageBroker: opt.broker}

	if err := c.initMarkers(opt); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if err := c.initIdentity(opt); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init identity store: %w", err)
	}
	if err := c.initRecorder(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init audit: %w", err)
	}

	c.Busy = client.NewBusyTracker(c.Markers, c.Recorder, cfg.BusyStaleAfter, cfg.Instance)
	c.Resolver = client.NewIdentityResolver(c.Identity)
	c.Queue = client.NewAdmissionQueue(c.Markers, c.Busy, c.Resolver, c.LockManager, c.Recorder, cfg.Instance)
	c.Status = client.NewStatusReporter(c.Busy, c.Markers)
	return c, nil
}

// initMarkers picks the marker backend and the lock manager that fits it.
func (c *Container) initMarkers(opt *containerConfig) error {
	cfg := c.Config
	switch cfg.StorageDriver {
	case config.FileSystem:
		service := opt.fs
		if service == nil {
			service = afs.New()
		}
		markers, err := fs.NewMarkerStore(service, cfg.MarkerDir)
		if err != nil {
			return err
		}
		c.Markers = markers
		c.LockManager = lock.NewFileLockManager(cfg.MarkerDir)

	case config.Postgres:
		if c.DB == nil {
			conn, err := openDB("postgres", cfg.PostgresConfig.ConnectionUrl)
			if err != nil {
				return err
			}
			c.DB = conn
		}
		lockManager := lock.NewPostgresDistributedLockManager(c.DB)
		if err := db.Init(c.DB, lockManager); err != nil {
			return err
		}
		c.Markers = postgres.NewPostgresMarkerStore(c.DB)
		c.LockManager = lockManager

	case config.Redis:
		if c.Redis == nil {
			c.Redis = redis.NewClient(&redis.Options{
				Addr:     cfg.RedisConfig.Address,
				Password: cfg.RedisConfig.Password,
				DB:       cfg.RedisConfig.DB,
			})
		}
		c.Markers = redisstore.NewRedisMarkerStore(c.Redis)
		c.LockManager = lock.NewLocalLockManager()

	default:
		return fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}
	return nil
}

// initIdentity falls back to the storage connection when no separate
// identity database is configured.
func (c *Container) initIdentity(opt *containerConfig) error {
	identity := c.Config.IdentityConfig
	switch {
	case opt.identityDB != nil:
		c.IdentityDB = opt.identityDB
	case identity.DSN != "":
		conn, err := openDB(identity.Driver, identity.DSN)
		if err != nil {
			return err
		}
		c.IdentityDB = conn
	case c.DB != nil:
		c.Identity = postgres.NewPostgresIdentityStore(c.DB)
		return nil
	default:
		return errors.New("no identity database configured")
	}
	c.Identity = postgres.NewPostgresIdentityStore(c.IdentityDB)
	return nil
}

func (c *Container) initRecorder() error {
	cfg := c.Config
	recorders := []audit.Recorder{audit.NewFileRecorder(cfg.HistoryLogPath(), cfg.FlagLogPath())}

	if cfg.AuditConfig.UseDatabase {
		if c.DB == nil {
			return errors.New("database audit requires the postgres storage driver")
		}
		recorders = append(recorders, postgres.NewPostgresAuditStore(c.DB))
	}

	if cfg.AuditConfig.UseBroker {
		if c.MessageBroker == nil {
			broker, err := message_broaker.NewRabbitMQ(*cfg.RabbitMQConfig)
			if err != nil {
				return err
			}
			c.MessageBroker = broker
		}
		recorders = append(recorders, audit.NewBrokerRecorder(c.MessageBroker, cfg.RabbitMQConfig.Queue))
	}

	c.Recorder = audit.NewMultiRecorder(recorders...)
	return nil
}

// NewWorker builds the actuator worker on top of the shared stores.
func (c *Container) NewWorker(link transport.Transport) *client.ActuatorWorker {
	cfg := c.Config
	var payments client.PaymentNotifier
	if cfg.WorkerConfig.PaymentEndpoint != "" {
		payments = client.NewHTTPPaymentNotifier(cfg.WorkerConfig.PaymentEndpoint, cfg.WorkerConfig.PaymentTimeout)
	}
	return client.NewActuatorWorker(
		c.Markers,
		c.Busy,
		c.Identity,
		link,
		payments,
		c.Recorder,
		c.LockManager,
		cfg.WorkerConfig,
		cfg.IdentityConfig.ParentID,
		cfg.Instance,
	)
}

// Close releases every connection the container holds. Only the identity
// store owns its connection; the marker stores share theirs.
func (c *Container) Close() error {
	var errs []error
	if c.MessageBroker != nil {
		errs = append(errs, c.MessageBroker.Close())
	}
	if c.IdentityDB != nil && c.Identity != nil {
		errs = append(errs, c.Identity.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	return errors.Join(errs...)
}

func openDB(driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return conn, nil
}
