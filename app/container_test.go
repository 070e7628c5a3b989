package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MrRookie-AIR/PushupsbyArduino/client"
	"github.com/MrRookie-AIR/PushupsbyArduino/client/test/mocks"
	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/MrRookie-AIR/PushupsbyArduino/types/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainer_FileSystemDriver(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg, err := config.NewPushupConfig("box-1", config.WithFileSystemConfig(dir))
	require.NoError(t, err)

	identityDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectQuery("SELECT id FROM rules WHERE user_id = \\$1").
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("77"))
	mock.ExpectClose()

	c, err := NewContainer(ctx, cfg, WithIdentityDB(identityDB))
	require.NoError(t, err)

	accepted, err := c.Queue.Submit(ctx, client.SubmitRequest{UserID: "42", Label: "Ivan"})
	require.NoError(t, err)
	assert.Equal(t, types.Accepted{JobID: "77", Label: "Ivan"}, accepted)

	content, err := os.ReadFile(filepath.Join(dir, "pushup_cmd.txt"))
	require.NoError(t, err)
	assert.Equal(t, "77|Ivan", strings.TrimSpace(string(content)))

	assert.Equal(t, types.StatusBusy, c.Status.Query(ctx))

	history, err := os.ReadFile(filepath.Join(dir, "history.log"))
	require.NoError(t, err)
	assert.Contains(t, string(history), "rule_id=77, name=Ivan")

	_, err = c.Queue.Submit(ctx, client.SubmitRequest{JobID: "78", Label: "Olga"})
	reason, ok := custom_errors.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, custom_errors.ReasonAlreadyQueued, reason)

	require.NoError(t, c.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewContainer_RedisDriverWithBroker(t *testing.T) {
	ctx := context.Background()
	server := miniredis.RunT(t)
	cfg, err := config.NewPushupConfig("box-2",
		config.WithRedisConfig(config.RedisConfig{Address: server.Addr()}),
		config.WithRabbitMQConfig(config.RabbitMQConfig{URL: "amqp://unused"}),
	)
	require.NoError(t, err)
	cfg.MarkerDir = t.TempDir()

	var published int
	broker := &mocks.MockMessageBroker{
		PublishFunc: func(queue string, message []byte) error {
			published++
			return nil
		},
	}
	identityDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	c, err := NewContainer(ctx, cfg,
		WithIdentityDB(identityDB),
		WithRedis(redis.NewClient(&redis.Options{Addr: server.Addr()})),
		WithMessageBroker(broker),
	)
	require.NoError(t, err)

	_, err = c.Queue.Submit(ctx, client.SubmitRequest{JobID: "77", Label: "Ivan"})
	require.NoError(t, err)
	assert.True(t, server.Exists("pushup:pending"))
	assert.Equal(t, 2, published)

	require.NoError(t, c.Close())
}

func TestNewContainer_PostgresDriver(t *testing.T) {
	cfg, err := config.NewPushupConfig("box-3",
		config.WithPostgresConfig(config.PostgresConfig{ConnectionUrl: "postgres://unused"}),
		config.WithAuditConfig(config.AuditConfig{UseDatabase: true, HistoryLogPath: filepath.Join(t.TempDir(), "h.log")}),
	)
	require.NoError(t, err)

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(0).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPing()
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS pushup_schema").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pushup_schema.pending_job").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pushup_schema.audit_records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(0).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	c, err := NewContainer(context.Background(), cfg, WithDB(conn))
	require.NoError(t, err)
	assert.NotNil(t, c.Identity)
	assert.NotNil(t, c.Markers)

	require.NoError(t, c.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewContainer_MissingIdentityDatabase(t *testing.T) {
	cfg, err := config.NewPushupConfig("box-4", config.WithFileSystemConfig(t.TempDir()))
	require.NoError(t, err)

	_, err = NewContainer(context.Background(), cfg)
	assert.ErrorContains(t, err, "no identity database configured")
}

func TestContainer_NewWorker(t *testing.T) {
	cfg, err := config.NewPushupConfig("box-5", config.WithFileSystemConfig(t.TempDir()))
	require.NoError(t, err)
	identityDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	c, err := NewContainer(context.Background(), cfg, WithIdentityDB(identityDB))
	require.NoError(t, err)
	assert.NotNil(t, c.NewWorker(&mocks.MockTransport{}))
	require.NoError(t, c.Close())
}
