package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of the configuration.
type File struct {
	Instance       string        `yaml:"instance"`
	HTTPPort       uint          `yaml:"httpPort"`
	Storage        string        `yaml:"storage"`
	MarkerDir      string        `yaml:"markerDir"`
	BusyStaleAfter time.Duration `yaml:"busyStaleAfter"`
	Postgres       struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Identity struct {
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		ParentID int64  `yaml:"parentId"`
	} `yaml:"identity"`
	Audit struct {
		HistoryLog  string `yaml:"historyLog"`
		FlagLog     string `yaml:"flagLog"`
		UseDatabase bool   `yaml:"useDatabase"`
	} `yaml:"audit"`
	RabbitMQ struct {
		URL        string `yaml:"url"`
		Exchange   string `yaml:"exchange"`
		Queue      string `yaml:"queue"`
		RoutingKey string `yaml:"routingKey"`
	} `yaml:"rabbitmq"`
	Serial struct {
		Device     string        `yaml:"device"`
		BaudRate   int           `yaml:"baudRate"`
		ResetDelay time.Duration `yaml:"resetDelay"`
	} `yaml:"serial"`
	Worker struct {
		PollInterval    time.Duration `yaml:"pollInterval"`
		MinDoneDelay    time.Duration `yaml:"minDoneDelay"`
		PaidCheckEvery  int           `yaml:"paidCheckEvery"`
		MaxExecution    time.Duration `yaml:"maxExecution"`
		PaymentEndpoint string        `yaml:"paymentEndpoint"`
		PaymentTimeout  time.Duration `yaml:"paymentTimeout"`
	} `yaml:"worker"`
}

// Load reads a YAML file (optional when path is empty), applies PUSHUP_*
// environment overrides and builds a validated PushupConfig.
func Load(path string) (*PushupConfig, error) {
	f := &File{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := f.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return f.Build()
}

func (f *File) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"PUSHUP_INSTANCE":        &f.Instance,
		"PUSHUP_STORAGE":         &f.Storage,
		"PUSHUP_MARKER_DIR":      &f.MarkerDir,
		"PUSHUP_POSTGRES_URL":    &f.Postgres.URL,
		"PUSHUP_REDIS_ADDR":      &f.Redis.Address,
		"PUSHUP_REDIS_PASSWORD":  &f.Redis.Password,
		"PUSHUP_IDENTITY_DRIVER": &f.Identity.Driver,
		"PUSHUP_IDENTITY_DSN":    &f.Identity.DSN,
		"PUSHUP_RABBITMQ_URL":    &f.RabbitMQ.URL,
		"PUSHUP_SERIAL_DEVICE":   &f.Serial.Device,
		"PUSHUP_PAYMENT_URL":     &f.Worker.PaymentEndpoint,
	}
	for key, target := range str {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	if v, ok := lookup("PUSHUP_HTTP_PORT"); ok && v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("PUSHUP_HTTP_PORT: %w", err)
		}
		f.HTTPPort = uint(port)
	}
	if v, ok := lookup("PUSHUP_BUSY_STALE_AFTER"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PUSHUP_BUSY_STALE_AFTER: %w", err)
		}
		f.BusyStaleAfter = d
	}
	return nil
}

// Build turns the file representation into options, leaving zero values at
// their defaults.
func (f *File) Build() (*PushupConfig, error) {
	var opts []Option
	if f.HTTPPort != 0 {
		opts = append(opts, WithHTTPPort(f.HTTPPort))
	}
	if f.BusyStaleAfter != 0 {
		opts = append(opts, WithBusyStaleAfter(f.BusyStaleAfter))
	}

	switch ParseStorageDriver(f.Storage) {
	case Postgres:
		opts = append(opts, WithPostgresConfig(PostgresConfig{ConnectionUrl: f.Postgres.URL}))
		if f.MarkerDir != "" {
			opts = append(opts, withMarkerDir(f.MarkerDir))
		}
	case Redis:
		opts = append(opts, WithRedisConfig(RedisConfig{
			Address:  f.Redis.Address,
			Password: f.Redis.Password,
			DB:       f.Redis.DB,
		}))
		if f.MarkerDir != "" {
			opts = append(opts, withMarkerDir(f.MarkerDir))
		}
	case FileSystem:
		opts = append(opts, WithFileSystemConfig(f.MarkerDir))
	default:
		if f.Storage != "" {
			opts = append(opts, func(*PushupConfig) error {
				return fmt.Errorf("unknown storage driver %q", f.Storage)
			})
		} else if f.MarkerDir != "" {
			opts = append(opts, WithFileSystemConfig(f.MarkerDir))
		}
	}

	if f.Identity.DSN != "" {
		driver := f.Identity.Driver
		if driver == "" {
			driver = DefaultIdentityDriver
		}
		opts = append(opts, WithIdentityConfig(IdentityConfig{
			Driver:   driver,
			DSN:      f.Identity.DSN,
			ParentID: f.Identity.ParentID,
		}))
	}

	opts = append(opts, WithAuditConfig(AuditConfig{
		HistoryLogPath: f.Audit.HistoryLog,
		FlagLogPath:    f.Audit.FlagLog,
		UseDatabase:    f.Audit.UseDatabase,
	}))
	if f.RabbitMQ.URL != "" {
		opts = append(opts, WithRabbitMQConfig(RabbitMQConfig{
			URL:         f.RabbitMQ.URL,
			Exchange:    f.RabbitMQ.Exchange,
			Queue:       f.RabbitMQ.Queue,
			RoutingKey:  f.RabbitMQ.RoutingKey,
			ContentType: "application/json",
		}))
	}

	if f.Serial.Device != "" || f.Serial.BaudRate != 0 || f.Serial.ResetDelay != 0 {
		serial := SerialConfig{
			Device:     f.Serial.Device,
			BaudRate:   f.Serial.BaudRate,
			ResetDelay: f.Serial.ResetDelay,
		}
		if serial.Device == "" {
			serial.Device = DefaultSerialDevice
		}
		if serial.BaudRate == 0 {
			serial.BaudRate = DefaultBaudRate
		}
		if serial.ResetDelay == 0 {
			serial.ResetDelay = DefaultResetDelay
		}
		opts = append(opts, WithSerialConfig(serial))
	}

	w := f.Worker
	if w != (File{}).Worker {
		worker := WorkerConfig{
			PollInterval:    w.PollInterval,
			MinDoneDelay:    w.MinDoneDelay,
			PaidCheckEvery:  w.PaidCheckEvery,
			MaxExecution:    w.MaxExecution,
			PaymentEndpoint: w.PaymentEndpoint,
			PaymentTimeout:  w.PaymentTimeout,
		}
		if worker.PollInterval == 0 {
			worker.PollInterval = DefaultPollInterval
		}
		if worker.MinDoneDelay == 0 {
			worker.MinDoneDelay = DefaultMinDoneDelay
		}
		if worker.PaidCheckEvery == 0 {
			worker.PaidCheckEvery = DefaultPaidCheckEvery
		}
		opts = append(opts, WithWorkerConfig(worker))
	}

	instance := f.Instance
	if instance == "" {
		instance, _ = os.Hostname()
	}
	return NewPushupConfig(instance, opts...)
}

func withMarkerDir(dir string) Option {
	return func(c *PushupConfig) error {
		c.MarkerDir = dir
		return nil
	}
}
