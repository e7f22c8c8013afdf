package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"taskhub/configs"

	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// sqliteUnicode is go-sqlite3 with lower() folding all of Unicode instead of
// ASCII only, so LOWER(col) matches what strings.ToLower produces.
const sqliteUnicode = "sqlite3_unicode"

func init() {
	sql.Register(sqliteUnicode, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// ConnectDB opens the pool once per process. The handle is injected into
// every repository instead of living in a package variable.
func ConnectDB(cfg configs.Config) *sql.DB {
	db, err := Open(cfg.DBDriver, DSN(cfg, cfg.DBName))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return db
}

// Open opens and pings a pool for driver.
func Open(driver, dsn string) (*sql.DB, error) {
	name := driver
	if driver == DriverSQLite {
		name = sqliteUnicode
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// DSN builds the connection string for cfg.DBDriver against dbName.
func DSN(cfg configs.Config, dbName string) string {
	if cfg.DBDriver == DriverSQLite {
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", cfg.DBPath)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, dbName)
}
