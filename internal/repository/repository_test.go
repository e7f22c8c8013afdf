package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"taskhub/internal/models"
	"taskhub/pkg/database"
	"taskhub/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger.InitNopLoggers()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, CreateTableIfNotExists(db, database.DriverSQLite))
	return db
}

func newUser(username string, now time.Time) *models.User {
	hash := "hash"
	return &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@Example.com",
		PasswordHash: &hash,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestWhereRenumbers(t *testing.T) {
	w := &where{}
	w.add("a = ?", 1)
	w.add("(b LIKE ? OR c LIKE ?)", "x", "y")
	limit := w.next(10)

	assert.Equal(t, " WHERE a = $1 AND (b LIKE $2 OR c LIKE $3)", w.sql())
	assert.Equal(t, "$4", limit)
	assert.Equal(t, []any{1, "x", "y", 10}, w.args)
	assert.Equal(t, "", (&where{}).sql())
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern("ABC"))
	assert.Equal(t, `%50\% off\_now%`, likePattern("50% off_now"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 0, Page{}.Offset())
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	u := newUser("alice", now)
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "alice@example.com", u.Email)

	byEmail, err := repo.GetByLogin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	dup := newUser("alice", now)
	dup.Email = "other@example.com"
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	usernameTaken, emailTaken, err := repo.Taken(ctx, "alice", "nobody@example.com", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, usernameTaken)
	assert.False(t, emailTaken)

	usernameTaken, emailTaken, err = repo.Taken(ctx, "alice", "alice@example.com", u.ID)
	require.NoError(t, err)
	assert.False(t, usernameTaken)
	assert.False(t, emailTaken)

	name, err := repo.AvailableUsername(ctx, "Alice!")
	require.NoError(t, err)
	assert.Equal(t, "alice1", name)

	googleID := "g-1"
	u.GoogleID = &googleID
	u.Preferences.TaskReminders = false
	require.NoError(t, repo.Update(ctx, u))

	linked, err := repo.GetByProvider(ctx, "google", "g-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, linked.ID)
	assert.False(t, linked.Preferences.TaskReminders)
	assert.True(t, linked.Preferences.EmailNotifications)

	_, err = repo.GetByProvider(ctx, "myspace", "x")
	assert.Error(t, err)
}

func TestTaskRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"Alpha", "Beta", "Gamma"} {
		require.NoError(t, repo.Create(ctx, &models.Task{
			TaskBase: models.TaskBase{
				ID: uuid.New(), Title: title, Description: "desc",
				Priority: models.PriorityLow, Status: models.StatusNotStarted,
				CreatedAt: base.Add(time.Duration(i) * time.Hour), UpdatedAt: base,
			},
		}))
	}

	all, total, err := repo.List(ctx, TaskFilter{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "Gamma", all[0].Title)
	assert.Nil(t, all[0].UserID)

	page, total, err := repo.List(ctx, TaskFilter{Search: "a"}, Page{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Alpha", page[0].Title)

	task := all[1]
	due := base.Add(48 * time.Hour)
	task.Status = models.StatusCompleted
	task.DueDate = &due
	require.NoError(t, repo.Update(ctx, &task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	missing := task
	missing.ID = uuid.New()
	assert.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, missing.ID), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, task.ID))

	_, total, err = repo.List(ctx, TaskFilter{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestVitalTaskStepsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewVitalTaskRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	task := &models.VitalTask{
		TaskBase: models.TaskBase{
			ID: uuid.New(), Title: "t", Description: "d",
			Priority: models.PriorityHigh, Status: models.StatusNotStarted, CreatedAt: now, UpdatedAt: now,
		},
		DetailedSteps: []string{"one", "two"},
	}
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got.DetailedSteps)

	list, err := repo.List(ctx, TaskFilter{Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCategoryRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	require.NoError(t, SeedDefaultCategories(ctx, repo))
	require.NoError(t, SeedDefaultCategories(ctx, repo))

	statuses, err := repo.List(ctx, models.CategoryStatus)
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.True(t, s.IsDefault)
		assert.Nil(t, s.Level)
	}

	taken, err := repo.NameTaken(ctx, models.CategoryPriority, "EXTREME", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.LevelTaken(ctx, 2, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	now := time.Now().UTC()
	dup := &models.Category{ID: uuid.New(), Type: models.CategoryStatus, Name: "completed", CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	_, err = repo.List(ctx, models.CategoryType("label"))
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO vital_tasks (id, title, description, priority, status, detailed_steps, created_at, updated_at)
		VALUES ($1, 't', 'd', 'Low', 'Completed', '[]', $2, $3)`, uuid.New(), now, now)
	require.NoError(t, err)
	n, err := repo.CountTaskReferences(ctx, models.CategoryPriority, models.PriorityLow)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.CountTaskReferences(ctx, models.CategoryStatus, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvitationRepository(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewInvitationRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	inviter := newUser("host", now)
	require.NoError(t, users.Create(ctx, inviter))

	mk := func(token, email string, expires time.Time) *models.Invitation {
		inv := &models.Invitation{
			ID: uuid.New(), Token: token, Email: email, InviterID: inviter.ID,
			Status: models.InvitationPending, ExpiresAt: expires, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.Create(ctx, inv))
		return inv
	}
	live := mk("live", "Guest@example.com", now.Add(time.Hour))
	stale := mk("stale", "late@example.com", now.Add(-time.Minute))

	pending, err := repo.HasPending(ctx, "guest@EXAMPLE.com", now)
	require.NoError(t, err)
	assert.True(t, pending)
	pending, err = repo.HasPending(ctx, "late@example.com", now)
	require.NoError(t, err)
	assert.False(t, pending)

	assert.ErrorIs(t, repo.Create(ctx, &models.Invitation{
		ID: uuid.New(), Token: "live", Email: "x@example.com", InviterID: inviter.ID,
		Status: models.InvitationPending, ExpiresAt: now, CreatedAt: now, UpdatedAt: now,
	}), ErrDuplicate)

	guest := newUser("host", now)
	guest.Email = live.Email
	require.NoError(t, repo.Accept(ctx, live, guest, now))
	assert.Equal(t, "host1", guest.Username)
	assert.Equal(t, models.InvitationAccepted, live.Status)

	// accepting twice fails and creates nobody
	again := newUser("again", now)
	again.Email = "again@example.com"
	err = repo.Accept(ctx, live, again, now)
	assert.True(t, errors.Is(err, ErrNotFound), err)
	_, err = users.GetByEmail(ctx, "again@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// an overdue invitation cannot be accepted either
	late := newUser("late", now)
	late.Email = stale.Email
	assert.ErrorIs(t, repo.Accept(ctx, stale, late, now), ErrNotFound)

	n, err := repo.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	items, total, err := repo.ListByInviter(ctx, inviter.ID, string(models.InvitationExpired), now, Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "stale", items[0].Token)

	assert.ErrorIs(t, repo.SetStatus(ctx, stale.ID, models.InvitationDeclined, now), ErrNotFound)
}

func TestSearchFoldsNonASCII(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &models.Task{
		TaskBase: models.TaskBase{
			ID: uuid.New(), Title: "RÉUNION À L'ÉCOLE", Description: "d",
			Priority: models.PriorityLow, Status: models.StatusNotStarted, CreatedAt: now, UpdatedAt: now,
		},
	}))

	found, total, err := repo.List(ctx, TaskFilter{Search: "école"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, found, 1)

	categories := NewCategoryRepository(db)
	require.NoError(t, categories.Create(ctx, &models.Category{
		ID: uuid.New(), Type: models.CategoryStatus, Name: "Été", CreatedAt: now, UpdatedAt: now,
	}))
	taken, err := categories.NameTaken(ctx, models.CategoryStatus, "été", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
}
