package v1_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	session, userID := env.register(t, uniqueName("tasker"))

	created := env.do(t, http.MethodPost, "/api/tasks", map[string]string{
		"title":       "A",
		"description": "B",
	}, session)
	require.Equal(t, http.StatusCreated, created.Status, created.Body)
	task := created.data()
	assert.Equal(t, "Moderate", task["priority"])
	assert.Equal(t, "Not Started", task["status"])
	assert.Equal(t, userID, task["user"])
	id := task["id"].(string)

	found := env.do(t, http.MethodGet, "/api/tasks?search=a", nil, session)
	require.Equal(t, http.StatusOK, found.Status)
	require.Len(t, found.list(), 1)
	assert.Equal(t, id, found.list()[0].(map[string]any)["id"])

	got := env.do(t, http.MethodGet, "/api/tasks/"+id, nil, session)
	require.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, "A", got.data()["title"])

	updated := env.do(t, http.MethodPut, "/api/tasks/"+id, map[string]string{
		"status": "Completed",
	}, session)
	require.Equal(t, http.StatusOK, updated.Status, updated.Body)
	assert.Equal(t, "Completed", updated.data()["status"])
	assert.Equal(t, "A", updated.data()["title"])

	deleted := env.do(t, http.MethodDelete, "/api/tasks/"+id, nil, session)
	require.Equal(t, http.StatusOK, deleted.Status)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/tasks/"+id, nil, session).Status)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/tasks/"+id, nil, session).Status)
}

func TestTaskRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/tasks", "/api/vital-tasks", "/api/my-tasks", "/api/stats"} {
		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, path, nil, "").Status, path)
	}
}

func TestTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("validator"))

	r := env.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "only title"}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPost, "/api/tasks", map[string]string{
		"title":       "t",
		"description": "d",
		"priority":    "Urgent",
	}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	created := env.do(t, http.MethodPost, "/api/tasks", map[string]string{
		"title":       "t",
		"description": "d",
	}, session)
	require.Equal(t, http.StatusCreated, created.Status)
	id := created.data()["id"].(string)

	r = env.do(t, http.MethodPut, "/api/tasks/"+id, map[string]string{"status": "Done"}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPut, "/api/tasks/"+id, map[string]string{"title": ""}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)
}

func TestTaskBadAndMissingID(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("ids"))

	for _, base := range []string{"/api/tasks/", "/api/vital-tasks/", "/api/my-tasks/"} {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, base+"not-a-uuid", nil, session).Status, base)

		missing := uuid.NewString()
		r := env.do(t, http.MethodPut, base+missing, map[string]string{"title": "x"}, session)
		assert.Equal(t, http.StatusNotFound, r.Status, base)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base+missing, nil, session).Status, base)
	}

	list := env.do(t, http.MethodGet, "/api/tasks", nil, session)
	assert.Empty(t, list.list())
}

func TestTaskListFiltersAndPagination(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("pager"))

	for i, body := range []map[string]string{
		{"title": "Write report", "description": "quarterly", "priority": "High", "category": "Work"},
		{"title": "Buy milk", "description": "groceries", "priority": "Low", "category": "Home"},
		{"title": "Plan trip", "description": "REPORT the budget", "priority": "High", "category": "Homework"},
	} {
		r := env.do(t, http.MethodPost, "/api/tasks", body, session)
		require.Equal(t, http.StatusCreated, r.Status, i)
	}

	r := env.do(t, http.MethodGet, "/api/tasks?priority=High", nil, session)
	assert.Len(t, r.list(), 2)

	r = env.do(t, http.MethodGet, "/api/tasks?search=report", nil, session)
	assert.Len(t, r.list(), 2)

	r = env.do(t, http.MethodGet, "/api/tasks?category=home", nil, session)
	assert.Len(t, r.list(), 2)

	r = env.do(t, http.MethodGet, "/api/tasks?search=100%25", nil, session)
	assert.Empty(t, r.list())

	r = env.do(t, http.MethodGet, "/api/tasks?page=2&limit=2", nil, session)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.list(), 1)
	pagination := r.Body["pagination"].(map[string]any)
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["page"])
	assert.EqualValues(t, 2, pagination["limit"])
	assert.EqualValues(t, 2, pagination["pages"])

	r = env.do(t, http.MethodGet, "/api/tasks?limit=1000", nil, session)
	assert.EqualValues(t, 100, r.Body["pagination"].(map[string]any)["limit"])
}

func TestVitalTaskDefaultsAndSteps(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("vital"))

	r := env.do(t, http.MethodPost, "/api/vital-tasks", map[string]any{
		"title":         "Renew passport",
		"description":   "before travel",
		"detailedSteps": []string{"photos", "form"},
	}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	assert.Equal(t, "High", r.data()["priority"])
	assert.Equal(t, "Not Started", r.data()["status"])
	assert.Equal(t, []any{"photos", "form"}, r.data()["detailedSteps"])
	id := r.data()["id"].(string)

	r = env.do(t, http.MethodPut, "/api/vital-tasks/"+id, map[string]any{
		"detailedSteps": []string{"photos", "form", "appointment"},
		"status":        "In Progress",
	}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Len(t, r.data()["detailedSteps"], 3)

	r = env.do(t, http.MethodGet, "/api/vital-tasks?status=In%20Progress", nil, session)
	assert.Len(t, r.list(), 1)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/vital-tasks/"+id, nil, session).Status)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/vital-tasks/"+id, nil, session).Status)
}

func TestMyTaskDefaultsAndPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("mine"))

	r := env.do(t, http.MethodPost, "/api/my-tasks", map[string]any{
		"title":       "Learn Go",
		"description": "finish the tour",
		"objective":   "ship a service",
		"deadline":    "2030-01-02T15:04:05Z",
	}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	assert.Equal(t, "Moderate", r.data()["priority"])
	assert.Equal(t, "ship a service", r.data()["objective"])
	id := r.data()["id"].(string)

	r = env.do(t, http.MethodPut, "/api/my-tasks/"+id, map[string]any{
		"additionalNotes": "use fiber",
	}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, "use fiber", r.data()["additionalNotes"])
	assert.Equal(t, "ship a service", r.data()["objective"])
	assert.Equal(t, "2030-01-02T15:04:05Z", r.data()["deadline"])

	r = env.do(t, http.MethodGet, "/api/my-tasks?search=TOUR", nil, session)
	assert.Len(t, r.list(), 1)
}
