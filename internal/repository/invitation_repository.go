package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

const invitationColumns = `id, token, email, inviter_id, message, status, expires_at, accepted_at, created_at, updated_at`

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func scanInvitation(row scanner) (*models.Invitation, error) {
	i := &models.Invitation{}
	err := row.Scan(&i.ID, &i.Token, &i.Email, &i.InviterID, &i.Message, &i.Status,
		&i.ExpiresAt, &i.AcceptedAt, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return i, nil
}

func (r *InvitationRepository) Create(ctx context.Context, i *models.Invitation) error {
	i.Email = strings.ToLower(i.Email)
	_, err := r.db.ExecContext(ctx, `INSERT INTO invitations (`+invitationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		i.ID, i.Token, i.Email, i.InviterID, i.Message, i.Status, i.ExpiresAt, i.AcceptedAt,
		i.CreatedAt, i.UpdatedAt)
	return mapError(err)
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token))
}

// HasPending reports whether email already has an unexpired pending
// invitation.
func (r *InvitationRepository) HasPending(ctx context.Context, email string, now time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations
		WHERE email = $1 AND status = $2 AND expires_at > $3`,
		strings.ToLower(email), models.InvitationPending, now).Scan(&n)
	return n > 0, err
}

// ListByInviter pages through invitations sent by inviter, newest first.
// Pending rows past their expiry at now count as expired, whether or not
// the sweep has flipped them yet.
func (r *InvitationRepository) ListByInviter(ctx context.Context, inviter uuid.UUID, status string, now time.Time, page Page) ([]models.Invitation, int, error) {
	w := &where{}
	w.add("inviter_id = ?", inviter)
	switch models.InvitationStatus(status) {
	case "":
	case models.InvitationPending:
		w.add("status = ? AND expires_at > ?", models.InvitationPending, now)
	case models.InvitationExpired:
		w.add("(status = ? OR (status = ? AND expires_at <= ?))",
			models.InvitationExpired, models.InvitationPending, now)
	default:
		w.add("status = ?", status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + invitationColumns + ` FROM invitations` + w.sql() +
		` ORDER BY created_at DESC LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []models.Invitation{}
	for rows.Next() {
		i, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *i)
	}
	return items, total, rows.Err()
}

// SetStatus moves a pending invitation to status. A non-pending row is
// reported as ErrNotFound.
func (r *InvitationRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invitations SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`, status, now, id, models.InvitationPending)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Accept creates user and flips the invitation to accepted in one
// transaction. The username is de-duplicated inside the transaction.
func (r *InvitationRepository) Accept(ctx context.Context, inv *models.Invitation, user *models.User, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	username, err := availableUsername(ctx, tx, user.Username)
	if err != nil {
		return err
	}
	user.Username = username

	if err := insertUser(ctx, tx, user); err != nil {
		return fmt.Errorf("create invited user: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE invitations SET status = $1, accepted_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5 AND expires_at > $6`,
		models.InvitationAccepted, now, now, inv.ID, models.InvitationPending, now)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	inv.Status = models.InvitationAccepted
	inv.AcceptedAt = &now
	inv.UpdatedAt = now
	return nil
}

// ExpireOverdue materialises the expired state for pending invitations
// whose expiry has passed and returns how many rows changed.
func (r *InvitationRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE invitations SET status = $1, updated_at = $2
		WHERE status = $3 AND expires_at <= $4`,
		models.InvitationExpired, now, models.InvitationPending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
