package repository

import (
	"context"
	"database/sql"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

// TaskFilter narrows a task listing. Empty fields do not filter. Category
// only applies to the tasks table.
type TaskFilter struct {
	Status   string
	Priority string
	Category string
	Search   string
}

func (f TaskFilter) where() *where {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Priority != "" {
		w.add("priority = ?", f.Priority)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		w.add(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
	}
	return w
}

const taskColumns = `id, user_id, title, description, priority, status, category, due_date, created_at, updated_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row scanner) (*models.Task, error) {
	t := &models.Task{}
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.Category, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// List returns one page of matching tasks, newest first, and the total
// number of matches.
func (r *TaskRepository) List(ctx context.Context, f TaskFilter, page Page) ([]models.Task, int, error) {
	w := f.where()
	if f.Category != "" {
		w.add(`LOWER(category) LIKE ? ESCAPE '\'`, likePattern(f.Category))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + w.sql() + ` ORDER BY created_at DESC`
	if page.Limit > 0 {
		query += ` LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())
	}
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, total, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.UserID, t.Title, t.Description, t.Priority, t.Status, t.Category, t.DueDate,
		t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET
		title = $1, description = $2, priority = $3, status = $4, category = $5,
		due_date = $6, updated_at = $7
		WHERE id = $8`,
		t.Title, t.Description, t.Priority, t.Status, t.Category, t.DueDate, t.UpdatedAt, t.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
