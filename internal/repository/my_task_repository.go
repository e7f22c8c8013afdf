package repository

import (
	"context"
	"database/sql"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

const myTaskColumns = `id, title, description, priority, status, objective, task_description,
	additional_notes, deadline, created_at, updated_at`

type MyTaskRepository struct {
	db *sql.DB
}

func NewMyTaskRepository(db *sql.DB) *MyTaskRepository {
	return &MyTaskRepository{db: db}
}

func scanMyTask(row scanner) (*models.MyTask, error) {
	t := &models.MyTask{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.Objective,
		&t.TaskDescription, &t.AdditionalNotes, &t.Deadline, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *MyTaskRepository) List(ctx context.Context, f TaskFilter) ([]models.MyTask, error) {
	w := f.where()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+myTaskColumns+` FROM my_tasks`+w.sql()+` ORDER BY created_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.MyTask{}
	for rows.Next() {
		t, err := scanMyTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *MyTaskRepository) Create(ctx context.Context, t *models.MyTask) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO my_tasks (`+myTaskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.Objective, t.TaskDescription,
		t.AdditionalNotes, t.Deadline, t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

func (r *MyTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MyTask, error) {
	return scanMyTask(r.db.QueryRowContext(ctx, `SELECT `+myTaskColumns+` FROM my_tasks WHERE id = $1`, id))
}

func (r *MyTaskRepository) Update(ctx context.Context, t *models.MyTask) error {
	res, err := r.db.ExecContext(ctx, `UPDATE my_tasks SET
		title = $1, description = $2, priority = $3, status = $4, objective = $5,
		task_description = $6, additional_notes = $7, deadline = $8, updated_at = $9
		WHERE id = $10`,
		t.Title, t.Description, t.Priority, t.Status, t.Objective, t.TaskDescription,
		t.AdditionalNotes, t.Deadline, t.UpdatedAt, t.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *MyTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM my_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
