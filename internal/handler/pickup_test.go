package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/ewaste-pickup/internal/repository"
)

var (
	pickupDetailColumns = []string{"id", "resident_id", "address", "preferred_time", "urgency", "status", "assigned_collector_id", "res_name", "res_email", "col_name", "col_email"}
	pickupRecordColumns = []string{"id", "resident_id", "address", "preferred_time", "urgency", "status", "assigned_collector_id", "created_at", "updated_at"}
	pickupItemColumns   = []string{"id", "category_id", "quantity"}
)

func newPickupEnv(t *testing.T) (*PickupHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPickupHandler(repository.NewPickupRepo(db), repository.NewUserRepo(db)), mock
}

func invokeWithID(t *testing.T, h echo.HandlerFunc, req *http.Request, id string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h(c))
	return rec
}

func recordRow(id, residentID uint64, status string, collectorID any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(pickupRecordColumns).
		AddRow(id, residentID, "12 Elm St", nil, "standard", status, collectorID, now, now)
}

func detailRow(id, residentID uint64, status string, collectorID any, colName, colEmail any) *sqlmock.Rows {
	return sqlmock.NewRows(pickupDetailColumns).
		AddRow(id, residentID, "12 Elm St", nil, "standard", status, collectorID, "Alice", "alice@example.com", colName, colEmail)
}

func TestCreatePickup_RoundTrip(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(3)).
		WillReturnRows(userRow(3, "Alice", "alice@example.com", "x", "resident", nil, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_requests").
		WithArgs(uint64(3), "12 Elm St", nil, "standard", "pending").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO pickup_items").
		WithArgs(uint64(9), uint64(1), uint32(2), uint64(9), uint64(4), uint32(1)).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()
	mock.ExpectQuery("LEFT JOIN users col").
		WithArgs(uint64(9)).
		WillReturnRows(detailRow(9, 3, "pending", nil, nil, nil))
	mock.ExpectQuery("FROM pickup_items WHERE pickup_request_id = \\?").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(pickupItemColumns).AddRow(1, 1, 2).AddRow(2, 4, 1))

	rec := invoke(t, h.Create, jsonRequest(t, http.MethodPost, "/v1/pickups", map[string]any{
		"resident_id": 3,
		"address":     "12 Elm St",
		"items": []map[string]any{
			{"category_id": 1, "quantity": 2},
			{"category_id": 4, "quantity": 1},
		},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var d repository.PickupDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Equal(t, uint64(9), d.ID)
	require.Equal(t, "pending", d.Status)
	require.Equal(t, "Alice", d.ResidentName)
	require.Nil(t, d.AssignedCollectorID)
	require.Len(t, d.Items, 2)
	require.Equal(t, uint64(4), d.Items[1].CategoryID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePickup_ResidentNotFound(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := invoke(t, h.Create, jsonRequest(t, http.MethodPost, "/v1/pickups", map[string]any{
		"resident_id": 99, "address": "12 Elm St",
	}))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "resident not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePickup_MissingAddress(t *testing.T) {
	h, mock := newPickupEnv(t)

	rec := invoke(t, h.Create, jsonRequest(t, http.MethodPost, "/v1/pickups", map[string]any{
		"resident_id": 3,
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPickups_ResidentScopedToOwnRequests(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("WHERE p\\.resident_id = \\? ORDER BY p\\.created_at DESC LIMIT \\? OFFSET \\?").
		WithArgs(uint64(3), 20, 0).
		WillReturnRows(detailRow(9, 3, "pending", nil, nil, nil))
	mock.ExpectQuery("FROM pickup_items WHERE pickup_request_id IN").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"pickup_request_id", "id", "category_id", "quantity"}))

	rec := invoke(t, h.List, httptest.NewRequest(http.MethodGet, "/v1/pickups?role=resident&user_id=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var page []repository.PickupDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	require.Equal(t, uint64(3), page[0].ResidentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPickups_OtherResidentSeesEmptyPage(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("WHERE p\\.resident_id = \\?").
		WithArgs(uint64(4), 20, 0).
		WillReturnRows(sqlmock.NewRows(pickupDetailColumns))

	rec := invoke(t, h.List, httptest.NewRequest(http.MethodGet, "/v1/pickups?role=resident&user_id=4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPickups_InvalidOffset(t *testing.T) {
	h, mock := newPickupEnv(t)

	rec := invoke(t, h.List, httptest.NewRequest(http.MethodGet, "/v1/pickups?offset=abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_AssignFlipsPendingInOneWrite(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnRows(recordRow(11, 3, "pending", nil))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(7)).
		WillReturnRows(userRow(7, "Carl", "carl@example.com", "x", "collector", nil, nil))
	mock.ExpectExec("UPDATE pickup_requests SET status=\\?, assigned_collector_id=\\? WHERE id=\\?").
		WithArgs("assigned", int64(7), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("LEFT JOIN users col").
		WithArgs(uint64(11)).
		WillReturnRows(detailRow(11, 3, "assigned", 7, "Carl", "carl@example.com"))
	mock.ExpectQuery("FROM pickup_items WHERE pickup_request_id = \\?").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(pickupItemColumns))

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"assigned_collector_id": 7,
	}), "11")

	require.Equal(t, http.StatusOK, rec.Code)
	var d repository.PickupDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Equal(t, "assigned", d.Status)
	require.NotNil(t, d.AssignedCollectorID)
	require.Equal(t, uint64(7), *d.AssignedCollectorID)
	require.NotNil(t, d.AssignedCollectorName)
	require.Equal(t, "Carl", *d.AssignedCollectorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_CompleteKeepsCollector(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnRows(recordRow(11, 3, "assigned", 7))
	mock.ExpectExec("UPDATE pickup_requests SET status=\\?, assigned_collector_id=\\? WHERE id=\\?").
		WithArgs("completed", int64(7), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("LEFT JOIN users col").
		WithArgs(uint64(11)).
		WillReturnRows(detailRow(11, 3, "completed", 7, "Carl", "carl@example.com"))
	mock.ExpectQuery("FROM pickup_items WHERE pickup_request_id = \\?").
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows(pickupItemColumns))

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"status": "completed",
	}), "11")

	require.Equal(t, http.StatusOK, rec.Code)
	var d repository.PickupDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	require.Equal(t, "completed", d.Status)
	require.NotNil(t, d.AssignedCollectorID)
	require.Equal(t, uint64(7), *d.AssignedCollectorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_CompletedIsTerminal(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnRows(recordRow(11, 3, "completed", 7))

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"status": "pending",
	}), "11")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_StatusWithoutCollectorRejected(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnRows(recordRow(11, 3, "pending", nil))

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"status": "assigned",
	}), "11")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "collector required")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_UnknownCollector(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnRows(recordRow(11, 3, "pending", nil))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=\\?").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"assigned_collector_id": 99,
	}), "11")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "collector not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_NotFound(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnError(sql.ErrNoRows)

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"status": "completed",
	}), "11")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchPickup_InvalidStatusWord(t *testing.T) {
	h, mock := newPickupEnv(t)

	mock.ExpectQuery("FROM pickup_requests WHERE id=\\?").
		WithArgs(uint64(11)).
		WillReturnRows(recordRow(11, 3, "pending", nil))

	rec := invokeWithID(t, h.Patch, jsonRequest(t, http.MethodPatch, "/v1/pickups/11", map[string]any{
		"status": "cancelled",
	}), "11")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid status")
	require.NoError(t, mock.ExpectationsWereMet())
}
