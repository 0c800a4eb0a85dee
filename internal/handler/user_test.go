package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/ewaste-pickup/internal/repository"
)

func newUserEnv(t *testing.T) (*UserHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserHandler(repository.NewUserRepo(db)), mock
}

func TestListUsers(t *testing.T) {
	h, mock := newUserEnv(t)

	mock.ExpectQuery("SELECT id,name,email,role,address FROM users ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "address"}).
			AddRow(1, "Alice", "alice@example.com", "resident", "12 Elm St").
			AddRow(2, "Carl", "carl@example.com", "collector", nil))

	rec := invoke(t, h.List, jsonRequest(t, http.MethodGet, "/v1/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var users []userResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	require.Equal(t, "collector", users[1].Role)
	require.Nil(t, users[1].Address)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_NotFound(t *testing.T) {
	h, mock := newUserEnv(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	rec := invokeWithID(t, h.Get, jsonRequest(t, http.MethodGet, "/v1/users/9", nil), "9")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole_Success(t *testing.T) {
	h, mock := newUserEnv(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role=? WHERE id=?")).
		WithArgs("collector", uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(2)).
		WillReturnRows(userRow(2, "Carl", "carl@example.com", "x", "collector", nil, nil))

	rec := invoke(t, h.UpdateRole, jsonRequest(t, http.MethodPatch, "/v1/users/role", map[string]any{
		"user_id": 2, "role": "collector",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"role":"collector"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole_InvalidRole(t *testing.T) {
	h, mock := newUserEnv(t)

	rec := invoke(t, h.UpdateRole, jsonRequest(t, http.MethodPatch, "/v1/users/role", map[string]any{
		"user_id": 2, "role": "owner",
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid role")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRole_UnknownUser(t *testing.T) {
	h, mock := newUserEnv(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role=? WHERE id=?")).
		WithArgs("collector", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM users WHERE id=\\?").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := invoke(t, h.UpdateRole, jsonRequest(t, http.MethodPatch, "/v1/users/role", map[string]any{
		"user_id": 99, "role": "collector",
	}))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "user not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewAnalyticsHandler(repository.NewPickupRepo(db))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pickup_requests")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pickup_requests WHERE status=?")).
		WithArgs("completed").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pickup_requests WHERE status=?")).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(quantity),0) FROM pickup_items")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(31))

	rec := invoke(t, h.Summary, jsonRequest(t, http.MethodGet, "/v1/analytics/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"total_pickups":12,"completed_pickups":5,"pending_pickups":4,"total_items":31}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
