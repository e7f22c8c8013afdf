package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

const userColumns = `id, first_name, last_name, username, email, password, google_id, facebook_id,
	avatar, email_notifications, push_notifications, task_reminders, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.PasswordHash,
		&u.GoogleID, &u.FacebookID, &u.Avatar, &u.Preferences.EmailNotifications,
		&u.Preferences.PushNotifications, &u.Preferences.TaskReminders, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func insertUser(ctx context.Context, q querier, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	_, err := q.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash, u.GoogleID, u.FacebookID,
		u.Avatar, u.Preferences.EmailNotifications, u.Preferences.PushNotifications,
		u.Preferences.TaskReminders, u.CreatedAt, u.UpdatedAt)
	return mapError(err)
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return insertUser(ctx, r.db, u)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(email))
	return scanUser(row)
}

// GetByLogin resolves the login identifier as a username or an email.
func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE username = $1 OR email = $2 LIMIT 1`, identifier, strings.ToLower(identifier))
	return scanUser(row)
}

// GetByProvider looks a user up by OAuth provider id ("google" or "facebook").
func (r *UserRepository) GetByProvider(ctx context.Context, provider, providerID string) (*models.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, providerID)
	return scanUser(row)
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case "google":
		return "google_id", nil
	case "facebook":
		return "facebook_id", nil
	}
	return "", fmt.Errorf("unknown provider %q", provider)
}

// Taken reports which of username and email already belong to another
// account. exclude is ignored when uuid.Nil.
func (r *UserRepository) Taken(ctx context.Context, username, email string, exclude uuid.UUID) (usernameTaken, emailTaken bool, err error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, email FROM users
		WHERE (username = $1 OR email = $2) AND id <> $3`, username, strings.ToLower(email), exclude)
	if err != nil {
		return false, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var u, e string
		if err := rows.Scan(&u, &e); err != nil {
			return false, false, err
		}
		if u == username {
			usernameTaken = true
		}
		if e == strings.ToLower(email) {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, rows.Err()
}

// Update rewrites every mutable column of u.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	res, err := r.db.ExecContext(ctx, `UPDATE users SET
		first_name = $1, last_name = $2, username = $3, email = $4, password = $5,
		google_id = $6, facebook_id = $7, avatar = $8, email_notifications = $9,
		push_notifications = $10, task_reminders = $11, updated_at = $12
		WHERE id = $13`,
		u.FirstName, u.LastName, u.Username, u.Email, u.PasswordHash, u.GoogleID, u.FacebookID,
		u.Avatar, u.Preferences.EmailNotifications, u.Preferences.PushNotifications,
		u.Preferences.TaskReminders, u.UpdatedAt, u.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// AvailableUsername returns base, or base with a numeric suffix, that no
// account uses yet.
func (r *UserRepository) AvailableUsername(ctx context.Context, base string) (string, error) {
	return availableUsername(ctx, r.db, base)
}

func availableUsername(ctx context.Context, q querier, base string) (string, error) {
	base = sanitizeUsername(base)
	candidate := base
	for i := 1; i <= 1000; i++ {
		var exists int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = $1`, candidate).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", fmt.Errorf("no free username for %q", base)
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
