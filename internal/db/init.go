package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/constants"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/lock"
	_ "github.com/lib/pq"
)

const (
	baseDir = "migrations"
	schema  = "pushup_schema"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Init creates the marker and audit tables used by the postgres driver.
// Only one instance runs the scripts at a time, guarded by a distributed lock.
//
// The function performs the following steps:
//  1. Acquires the migration lock.
//  2. Pings the database to verify the connection.
//  3. Creates the schema if it does not exist.
//  4. Executes the embedded SQL scripts in file name order.
func Init(db *sql.DB, distributedLock lock.DistributedLockManager) error {
	migrationLock := constants.MigrationLock

	if err := distributedLock.Acquire(migrationLock); err != nil {
		return err
	}
	defer distributedLock.Release(migrationLock)

	if err := db.Ping(); err != nil {
		return err
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return err
	}

	scripts, err := readSQLScripts()
	if err != nil {
		return err
	}
	for _, script := range scripts {
		if _, err := db.Exec(script.body); err != nil {
			return fmt.Errorf("migration %s: %w", script.name, err)
		}
		log.Printf("[db] applied %s", script.name)
	}

	return nil
}

type sqlScript struct {
	name string
	body string
}

func readSQLScripts() ([]sqlScript, error) {
	entries, err := fs.ReadDir(migrations, baseDir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var scripts []sqlScript
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := fs.ReadFile(migrations, path.Join(baseDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, sqlScript{name: entry.Name(), body: string(content)})
	}

	return scripts, nil
}
