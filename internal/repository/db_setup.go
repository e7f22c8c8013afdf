package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskhub/internal/models"
	"taskhub/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// schema is written once with dialect tokens; columnTypes fills them in.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id {{uuid}} PRIMARY KEY,
    first_name VARCHAR(100) NOT NULL DEFAULT '',
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    username VARCHAR(255) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255),
    google_id VARCHAR(255) UNIQUE,
    facebook_id VARCHAR(255) UNIQUE,
    avatar VARCHAR(512) NOT NULL DEFAULT '',
    email_notifications {{bool}} NOT NULL DEFAULT TRUE,
    push_notifications {{bool}} NOT NULL DEFAULT TRUE,
    task_reminders {{bool}} NOT NULL DEFAULT TRUE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id {{uuid}} PRIMARY KEY,
    user_id {{uuid}} REFERENCES users (id) ON DELETE SET NULL,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    priority VARCHAR(50) NOT NULL,
    status VARCHAR(50) NOT NULL,
    category VARCHAR(255) NOT NULL DEFAULT '',
    due_date {{ts}},
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS vital_tasks (
    id {{uuid}} PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    priority VARCHAR(50) NOT NULL,
    status VARCHAR(50) NOT NULL,
    detailed_steps {{json}} NOT NULL,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS my_tasks (
    id {{uuid}} PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    priority VARCHAR(50) NOT NULL,
    status VARCHAR(50) NOT NULL,
    objective TEXT NOT NULL DEFAULT '',
    task_description TEXT NOT NULL DEFAULT '',
    additional_notes TEXT NOT NULL DEFAULT '',
    deadline {{ts}},
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS task_statuses (
    id {{uuid}} PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    color VARCHAR(20) NOT NULL DEFAULT '',
    is_default {{bool}} NOT NULL DEFAULT FALSE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS task_statuses_name_key ON task_statuses (LOWER(name));

CREATE TABLE IF NOT EXISTS task_priorities (
    id {{uuid}} PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    color VARCHAR(20) NOT NULL DEFAULT '',
    level INTEGER NOT NULL UNIQUE CHECK (level BETWEEN 1 AND 10),
    is_default {{bool}} NOT NULL DEFAULT FALSE,
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS task_priorities_name_key ON task_priorities (LOWER(name));

CREATE TABLE IF NOT EXISTS invitations (
    id {{uuid}} PRIMARY KEY,
    token VARCHAR(128) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL,
    inviter_id {{uuid}} NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    message TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL,
    expires_at {{ts}} NOT NULL,
    accepted_at {{ts}},
    created_at {{ts}} NOT NULL,
    updated_at {{ts}} NOT NULL
);
CREATE INDEX IF NOT EXISTS invitations_email_status_idx ON invitations (email, status);
CREATE INDEX IF NOT EXISTS invitations_expires_at_idx ON invitations (expires_at);
`

var columnTypes = map[string]*strings.Replacer{
	"postgres": strings.NewReplacer(
		"{{uuid}}", "UUID",
		"{{ts}}", "TIMESTAMPTZ",
		"{{bool}}", "BOOLEAN",
		"{{json}}", "JSONB",
	),
	"sqlite3": strings.NewReplacer(
		"{{uuid}}", "TEXT",
		"{{ts}}", "TIMESTAMP",
		"{{bool}}", "BOOLEAN",
		"{{json}}", "TEXT",
	),
}

// CreateTableIfNotExists creates every table and index for driver.
func CreateTableIfNotExists(db *sql.DB, driver string) error {
	r, ok := columnTypes[driver]
	if !ok {
		return fmt.Errorf("unsupported driver %q", driver)
	}
	if _, err := db.Exec(r.Replace(schema)); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	logger.SystemLogger.Info("Tables are ready", zap.String("driver", driver))
	return nil
}

// DeleteAllTable drops everything CreateTableIfNotExists made.
func DeleteAllTable(db *sql.DB) error {
	query := `
    DROP TABLE IF EXISTS invitations;
    DROP TABLE IF EXISTS task_priorities;
    DROP TABLE IF EXISTS task_statuses;
    DROP TABLE IF EXISTS my_tasks;
    DROP TABLE IF EXISTS vital_tasks;
    DROP TABLE IF EXISTS tasks;
    DROP TABLE IF EXISTS users;
    `
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

var defaultStatuses = []models.Category{
	{Name: models.StatusNotStarted, Color: "#F21E1E"},
	{Name: models.StatusInProgress, Color: "#0225FF"},
	{Name: models.StatusCompleted, Color: "#05A301"},
}

var defaultPriorities = []models.Category{
	{Name: models.PriorityLow, Color: "#05A301", Level: intPtr(1)},
	{Name: models.PriorityModerate, Color: "#0225FF", Level: intPtr(2)},
	{Name: models.PriorityHigh, Color: "#FFA500", Level: intPtr(3)},
	{Name: models.PriorityExtreme, Color: "#F21E1E", Level: intPtr(4)},
}

// SeedDefaultCategories inserts the protected default labels that are
// missing. Running it again is a no-op.
func SeedDefaultCategories(ctx context.Context, categories *CategoryRepository) error {
	seed := func(typ models.CategoryType, items []models.Category) error {
		for _, item := range items {
			taken, err := categories.NameTaken(ctx, typ, item.Name, uuid.Nil)
			if err != nil {
				return err
			}
			if taken {
				continue
			}
			now := time.Now().UTC()
			c := item
			c.ID = uuid.New()
			c.Type = typ
			c.IsDefault = true
			c.CreatedAt, c.UpdatedAt = now, now
			if err := categories.Create(ctx, &c); err != nil {
				return fmt.Errorf("seed %s %q: %w", typ, c.Name, err)
			}
		}
		return nil
	}
	if err := seed(models.CategoryStatus, defaultStatuses); err != nil {
		return err
	}
	return seed(models.CategoryPriority, defaultPriorities)
}

func intPtr(v int) *int { return &v }
