package repository

import (
	"context"
	"database/sql"
	"fmt"

	"taskhub/internal/models"

	"github.com/google/uuid"
)

// CategoryRepository stores task statuses and task priorities. The two
// tables share a shape; priorities add a level.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func categoryTable(typ models.CategoryType) (string, error) {
	switch typ {
	case models.CategoryStatus:
		return "task_statuses", nil
	case models.CategoryPriority:
		return "task_priorities", nil
	}
	return "", fmt.Errorf("unknown category type %q", typ)
}

func categoryColumns(typ models.CategoryType) string {
	if typ == models.CategoryPriority {
		return "id, name, color, level, is_default, created_at, updated_at"
	}
	return "id, name, color, is_default, created_at, updated_at"
}

func scanCategory(typ models.CategoryType, row scanner) (*models.Category, error) {
	c := &models.Category{Type: typ}
	var err error
	if typ == models.CategoryPriority {
		err = row.Scan(&c.ID, &c.Name, &c.Color, &c.Level, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	} else {
		err = row.Scan(&c.ID, &c.Name, &c.Color, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *CategoryRepository) List(ctx context.Context, typ models.CategoryType) ([]models.Category, error) {
	table, err := categoryTable(typ)
	if err != nil {
		return nil, err
	}
	order := "name ASC"
	if typ == models.CategoryPriority {
		order = "level ASC"
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns(typ)+` FROM `+table+` ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(typ, rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, typ models.CategoryType, id uuid.UUID) (*models.Category, error) {
	table, err := categoryTable(typ)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns(typ)+` FROM `+table+` WHERE id = $1`, id)
	return scanCategory(typ, row)
}

// NameTaken compares names case-insensitively, ignoring the record exclude.
func (r *CategoryRepository) NameTaken(ctx context.Context, typ models.CategoryType, name string, exclude uuid.UUID) (bool, error) {
	table, err := categoryTable(typ)
	if err != nil {
		return false, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+`
		WHERE LOWER(name) = LOWER($1) AND id <> $2`, name, exclude).Scan(&n)
	return n > 0, err
}

// LevelTaken reports whether another priority already uses level.
func (r *CategoryRepository) LevelTaken(ctx context.Context, level int, exclude uuid.UUID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_priorities
		WHERE level = $1 AND id <> $2`, level, exclude).Scan(&n)
	return n > 0, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	table, err := categoryTable(c.Type)
	if err != nil {
		return err
	}
	if c.Type == models.CategoryPriority {
		_, err = r.db.ExecContext(ctx, `INSERT INTO `+table+` (`+categoryColumns(c.Type)+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.Name, c.Color, c.Level, c.IsDefault, c.CreatedAt, c.UpdatedAt)
	} else {
		_, err = r.db.ExecContext(ctx, `INSERT INTO `+table+` (`+categoryColumns(c.Type)+`)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Name, c.Color, c.IsDefault, c.CreatedAt, c.UpdatedAt)
	}
	return mapError(err)
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	table, err := categoryTable(c.Type)
	if err != nil {
		return err
	}
	var res sql.Result
	if c.Type == models.CategoryPriority {
		res, err = r.db.ExecContext(ctx, `UPDATE `+table+` SET name = $1, color = $2, level = $3, updated_at = $4
			WHERE id = $5`, c.Name, c.Color, c.Level, c.UpdatedAt, c.ID)
	} else {
		res, err = r.db.ExecContext(ctx, `UPDATE `+table+` SET name = $1, color = $2, updated_at = $3
			WHERE id = $4`, c.Name, c.Color, c.UpdatedAt, c.ID)
	}
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

func (r *CategoryRepository) Delete(ctx context.Context, typ models.CategoryType, id uuid.UUID) error {
	table, err := categoryTable(typ)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// CountTaskReferences counts task records of every kind whose status or
// priority column (per typ) equals name.
func (r *CategoryRepository) CountTaskReferences(ctx context.Context, typ models.CategoryType, name string) (int, error) {
	column := "status"
	if typ == models.CategoryPriority {
		column = "priority"
	}
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM tasks WHERE `+column+` = $1) +
		(SELECT COUNT(*) FROM vital_tasks WHERE `+column+` = $2) +
		(SELECT COUNT(*) FROM my_tasks WHERE `+column+` = $3)`, name, name, name).Scan(&n)
	return n, err
}
