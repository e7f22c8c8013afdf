package v1_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.(map[string]any)["name"].(string))
	}
	return out
}

func TestListSeededCategories(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("cats"))

	r := env.do(t, http.MethodGet, "/api/categories?type=priority", nil, session)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, []string{"Low", "Moderate", "High", "Extreme"}, names(r.list()))

	r = env.do(t, http.MethodGet, "/api/categories?type=status", nil, session)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, []string{"Completed", "In Progress", "Not Started"}, names(r.list()))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/categories?type=label", nil, session).Status)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/categories", nil, session).Status)
}

func TestCreateCategoryUniqueness(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("cats"))

	r := env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "status", "name": "Blocked", "color": "#123456",
	}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	assert.Equal(t, false, r.data()["isDefault"])
	assert.NotContains(t, r.data(), "level")

	r = env.do(t, http.MethodPost, "/api/categories?type=status", map[string]any{"name": "blocked"}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Status name already exists", r.Body["error"])

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "priority", "name": "Critical", "level": 4,
	}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Priority level already exists", r.Body["error"])

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "priority", "name": "Critical",
	}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "priority", "name": "Critical", "level": 11,
	}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "priority", "name": "Critical", "level": 5, "color": "red",
	}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "priority", "name": "Critical", "level": 5, "color": "#FF0000",
	}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	assert.EqualValues(t, 5, r.data()["level"])
}

func TestUpdateCategoryExcludesSelf(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("cats"))

	r := env.do(t, http.MethodPost, "/api/categories", map[string]any{
		"type": "priority", "name": "Someday", "level": 6,
	}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	id := r.data()["id"].(string)

	// same name and level as itself is fine
	r = env.do(t, http.MethodPut, "/api/categories/"+id+"?type=priority", map[string]any{
		"name": "SOMEDAY", "level": 6, "color": "#abcdef",
	}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, "SOMEDAY", r.data()["name"])

	// level kept when omitted
	r = env.do(t, http.MethodPut, "/api/categories/"+id+"?type=priority", map[string]any{"name": "Later"}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.EqualValues(t, 6, r.data()["level"])

	r = env.do(t, http.MethodPut, "/api/categories/"+id+"?type=priority", map[string]any{"name": "High"}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPut, "/api/categories/"+id+"?type=priority", map[string]any{"name": "Later", "level": 1}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPut, "/api/categories/"+id+"?type=status", map[string]any{"name": "Later"}, session)
	assert.Equal(t, http.StatusNotFound, r.Status)
}

func TestDeleteCategoryGuards(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("cats"))

	statuses := env.do(t, http.MethodGet, "/api/categories?type=status", nil, session).list()
	defaultID := statuses[0].(map[string]any)["id"].(string)
	r := env.do(t, http.MethodDelete, "/api/categories/"+defaultID+"?type=status", nil, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Cannot delete default status", r.Body["error"])

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{"type": "status", "name": "Waiting"}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	id := r.data()["id"].(string)

	// referenced by name from two different task collections
	_, err := env.deps.DB.Exec(`INSERT INTO tasks (id, title, description, priority, status, created_at, updated_at)
		VALUES ('11111111-1111-1111-1111-111111111111', 't', 'd', 'Low', 'Waiting', '2024-01-01 00:00:00+00:00', '2024-01-01 00:00:00+00:00')`)
	require.NoError(t, err)
	_, err = env.deps.DB.Exec(`INSERT INTO my_tasks (id, title, description, priority, status, created_at, updated_at)
		VALUES ('22222222-2222-2222-2222-222222222222', 't', 'd', 'Low', 'Waiting', '2024-01-01 00:00:00+00:00', '2024-01-01 00:00:00+00:00')`)
	require.NoError(t, err)

	r = env.do(t, http.MethodDelete, "/api/categories/"+id+"?type=status", nil, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Cannot delete status in use by 2 task(s)", r.Body["error"])

	_, err = env.deps.DB.Exec(`DELETE FROM tasks`)
	require.NoError(t, err)
	_, err = env.deps.DB.Exec(`DELETE FROM my_tasks`)
	require.NoError(t, err)

	r = env.do(t, http.MethodDelete, "/api/categories/"+id+"?type=status", nil, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/categories/"+id+"?type=status", nil, session).Status)
}

func TestUpdateCategoryKeepsColorAndDefaultNames(t *testing.T) {
	env := newTestEnv(t)
	session, _ := env.register(t, uniqueName("cats"))

	statuses := env.do(t, http.MethodGet, "/api/categories?type=status", nil, session).list()
	completed := statuses[0].(map[string]any)
	require.Equal(t, "Completed", completed["name"])
	path := "/api/categories/" + completed["id"].(string) + "?type=status"

	r := env.do(t, http.MethodPut, path, map[string]any{"name": "Done"}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)
	assert.Equal(t, "Cannot rename default status", r.Body["error"])

	r = env.do(t, http.MethodPut, path, map[string]any{"name": "completed"}, session)
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = env.do(t, http.MethodPut, path, map[string]any{"name": "Completed", "color": "#000000"}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, "#000000", r.data()["color"])

	// color omitted leaves it alone
	r = env.do(t, http.MethodPut, path, map[string]any{"name": "Completed"}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, "#000000", r.data()["color"])

	r = env.do(t, http.MethodPost, "/api/categories", map[string]any{"type": "status", "name": "Blocked", "color": "#123456"}, session)
	require.Equal(t, http.StatusCreated, r.Status, r.Body)
	custom := "/api/categories/" + r.data()["id"].(string) + "?type=status"

	r = env.do(t, http.MethodPut, custom, map[string]any{"name": "Stuck"}, session)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	assert.Equal(t, "Stuck", r.data()["name"])
	assert.Equal(t, "#123456", r.data()["color"])
}
