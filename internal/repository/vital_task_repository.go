package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

const vitalTaskColumns = `id, title, description, priority, status, detailed_steps, created_at, updated_at`

type VitalTaskRepository struct {
	db *sql.DB
}

func NewVitalTaskRepository(db *sql.DB) *VitalTaskRepository {
	return &VitalTaskRepository{db: db}
}

func scanVitalTask(row scanner) (*models.VitalTask, error) {
	t := &models.VitalTask{}
	var steps []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &steps,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	t.DetailedSteps = []string{}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &t.DetailedSteps); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func encodeSteps(steps []string) (string, error) {
	if steps == nil {
		steps = []string{}
	}
	b, err := json.Marshal(steps)
	return string(b), err
}

func (r *VitalTaskRepository) List(ctx context.Context, f TaskFilter) ([]models.VitalTask, error) {
	w := f.where()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vitalTaskColumns+` FROM vital_tasks`+w.sql()+` ORDER BY created_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.VitalTask{}
	for rows.Next() {
		t, err := scanVitalTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *VitalTaskRepository) Create(ctx context.Context, t *models.VitalTask) error {
	steps, err := encodeSteps(t.DetailedSteps)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO vital_tasks (`+vitalTaskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Title, t.Description, t.Priority, t.Status, steps, t.CreatedAt, t.UpdatedAt)
	return mapError(err)
}

func (r *VitalTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VitalTask, error) {
	return scanVitalTask(r.db.QueryRowContext(ctx,
		`SELECT `+vitalTaskColumns+` FROM vital_tasks WHERE id = $1`, id))
}

func (r *VitalTaskRepository) Update(ctx context.Context, t *models.VitalTask) error {
	steps, err := encodeSteps(t.DetailedSteps)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE vital_tasks SET
		title = $1, description = $2, priority = $3, status = $4, detailed_steps = $5, updated_at = $6
		WHERE id = $7`,
		t.Title, t.Description, t.Priority, t.Status, steps, t.UpdatedAt, t.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *VitalTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vital_tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
