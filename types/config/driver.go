package config

import "strings"

type StorageDriver int

const (
	FileSystem StorageDriver = iota + 1
	Postgres
	Redis
)

type MessageQueueDriver int

const (
	RabbitMQ MessageQueueDriver = iota + 1
)

func (d MessageQueueDriver) String() string {
	switch d {
	case RabbitMQ:
		return "rabbitmq"
	default:
		return "unknown"
	}
}

// String converts the StorageDriver enum to a human-readable string.
func (d StorageDriver) String() string {
	switch d {
	case FileSystem:
		return "fs"
	case Postgres:
		return "postgres"
	case Redis:
		return "redis"
	}
	return "unknown"
}

// ParseStorageDriver is the inverse of String. Unknown names yield 0.
func ParseStorageDriver(name string) StorageDriver {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fs", "file", "filesystem":
		return FileSystem
	case "postgres", "postgresql":
		return Postgres
	case "redis":
		return Redis
	}
	return 0
}
