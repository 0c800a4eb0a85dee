package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/greenloop/ewaste-pickup/internal/model"
)

// pageSize is the fixed page length for pickup listings. Listing is
// offset-based and always orders most-recently-created first.
const pageSize = 20

// PickupRepo provides persistence for pickup requests and their items.
// A request and its items are created as one atomic unit; afterwards
// items are immutable and the request mutates only through
// UpdateStatusAssignment.
type PickupRepo struct{ DB *sql.DB }

func NewPickupRepo(db *sql.DB) *PickupRepo { return &PickupRepo{DB: db} }

// ItemInput describes one pickup item supplied at creation time.
type ItemInput struct {
	CategoryID uint64
	Quantity   uint32
}

// PickupItemDetail is the serialized form of a pickup item.
type PickupItemDetail struct {
	ID         uint64 `json:"id"`
	CategoryID uint64 `json:"category_id"`
	Quantity   uint32 `json:"quantity"`
}

// PickupDetail is the serialized form of a pickup request returned to
// clients, including resident and collector display names resolved
// from the users table.
type PickupDetail struct {
	ID                    uint64             `json:"id"`
	ResidentID            uint64             `json:"resident_id"`
	ResidentName          string             `json:"resident_name"`
	Address               string             `json:"address"`
	PreferredTime         *string            `json:"preferred_time"`
	Urgency               string             `json:"urgency"`
	Status                string             `json:"status"`
	AssignedCollectorID   *uint64            `json:"assigned_collector_id"`
	AssignedCollectorName *string            `json:"assigned_collector_name"`
	Items                 []PickupItemDetail `json:"items"`
}

// displayName resolves a user's visible name: the stored name, else
// the local part of the email, else a generic placeholder.
func displayName(name, email string, id uint64) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return "User " + strconv.FormatUint(id, 10)
}

const pickupSelect = `SELECT p.id, p.resident_id, p.address, p.preferred_time, p.urgency, p.status, p.assigned_collector_id,
       res.name, res.email, col.name, col.email
FROM pickup_requests p
JOIN users res ON res.id = p.resident_id
LEFT JOIN users col ON col.id = p.assigned_collector_id`

// scanPickup reads one joined pickup row into a PickupDetail with an
// empty item slice.
func scanPickup(scan func(dest ...any) error) (PickupDetail, error) {
	var (
		d             PickupDetail
		preferredTime sql.NullString
		collectorID   sql.NullInt64
		resName       string
		resEmail      string
		colName       sql.NullString
		colEmail      sql.NullString
	)
	err := scan(&d.ID, &d.ResidentID, &d.Address, &preferredTime, &d.Urgency, &d.Status, &collectorID,
		&resName, &resEmail, &colName, &colEmail)
	if err != nil {
		return PickupDetail{}, err
	}
	if preferredTime.Valid {
		pt := preferredTime.String
		d.PreferredTime = &pt
	}
	d.ResidentName = displayName(resName, resEmail, d.ResidentID)
	if collectorID.Valid {
		cid := uint64(collectorID.Int64)
		d.AssignedCollectorID = &cid
		name := displayName(colName.String, colEmail.String, cid)
		d.AssignedCollectorName = &name
	}
	d.Items = []PickupItemDetail{}
	return d, nil
}

// Create inserts a pickup request together with its items inside one
// transaction. The caller must have resolved the resident beforehand;
// a failed item insert rolls back the request so nothing is persisted
// partially. The created request is read back fully serialized.
func (r *PickupRepo) Create(ctx context.Context, residentID uint64, address string, preferredTime *string, urgency string, items []ItemInput) (*PickupDetail, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO pickup_requests (resident_id, address, preferred_time, urgency, status) VALUES (?,?,?,?,?)",
		residentID, address, preferredTime, urgency, string(model.StatusPending))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	pickupID := uint64(id)

	if len(items) > 0 {
		query := "INSERT INTO pickup_items (pickup_request_id, category_id, quantity) VALUES "
		args := make([]interface{}, 0, len(items)*3)
		for i, it := range items {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?)"
			qty := it.Quantity
			if qty < 1 {
				qty = 1
			}
			args = append(args, pickupID, it.CategoryID, qty)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pickupID)
}

// GetByID loads one pickup request with its items and resolved names.
// sql.ErrNoRows is returned when the request does not exist.
func (r *PickupRepo) GetByID(ctx context.Context, id uint64) (*PickupDetail, error) {
	row := r.DB.QueryRowContext(ctx, pickupSelect+" WHERE p.id = ?", id)
	d, err := scanPickup(row.Scan)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, category_id, quantity FROM pickup_items WHERE pickup_request_id = ? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it PickupItemDetail
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Quantity); err != nil {
			return nil, err
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns one page of pickup requests visible to the caller.
// Residents see only their own requests; collectors and admins see
// everything, so unclaimed pending requests stay discoverable. This is
// the single visibility-dispatch point for the role enum.
func (r *PickupRepo) List(ctx context.Context, role model.Role, userID uint64, offset int) ([]PickupDetail, error) {
	if offset < 0 {
		offset = 0
	}
	query := pickupSelect
	args := make([]interface{}, 0, 3)
	if role == model.RoleResident && userID != 0 {
		query += " WHERE p.resident_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY p.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]PickupDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		d, err := scanPickup(rows.Scan)
		if err != nil {
			return nil, err
		}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	// Populate items for the whole page in a single query.
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	itemQuery := "SELECT pickup_request_id, id, category_id, quantity FROM pickup_items WHERE pickup_request_id IN (" +
		strings.Join(placeholders, ",") + ") ORDER BY pickup_request_id, id"
	irows, err := r.DB.QueryContext(ctx, itemQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var pid uint64
		var it PickupItemDetail
		if err := irows.Scan(&pid, &it.ID, &it.CategoryID, &it.Quantity); err != nil {
			return nil, err
		}
		if idx, ok := index[pid]; ok {
			details[idx].Items = append(details[idx].Items, it)
		}
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// GetRecord loads the bare pickup_requests row without joins. The
// PATCH handler uses it to compute the transition before writing.
func (r *PickupRepo) GetRecord(ctx context.Context, id uint64) (model.PickupRequest, error) {
	var (
		p             model.PickupRequest
		preferredTime sql.NullString
		status        string
		collectorID   sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, resident_id, address, preferred_time, urgency, status, assigned_collector_id, created_at, updated_at FROM pickup_requests WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.ResidentID, &p.Address, &preferredTime, &p.Urgency, &status, &collectorID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.PickupRequest{}, err
	}
	p.Status = model.PickupStatus(status)
	if preferredTime.Valid {
		pt := preferredTime.String
		p.PreferredTime = &pt
	}
	if collectorID.Valid {
		cid := uint64(collectorID.Int64)
		p.AssignedCollectorID = &cid
	}
	return p, nil
}

// UpdateStatusAssignment writes status and assigned_collector_id in a
// single UPDATE so the pending/assigned invariant can never be
// observed half-applied. The store's row-level atomicity is the only
// serialization: two racing assignments are last-write-wins.
func (r *PickupRepo) UpdateStatusAssignment(ctx context.Context, id uint64, status model.PickupStatus, collectorID *uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE pickup_requests SET status=?, assigned_collector_id=? WHERE id=?",
		string(status), collectorID, id)
	return err
}

// CountByStatus counts pickup requests, optionally filtered by status.
// An empty status counts everything.
func (r *PickupRepo) CountByStatus(ctx context.Context, status model.PickupStatus) (uint64, error) {
	var n uint64
	if status == "" {
		err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM pickup_requests").Scan(&n)
		return n, err
	}
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pickup_requests WHERE status=?", string(status)).Scan(&n)
	return n, err
}

// SumItemQuantity totals the quantity across all pickup items.
func (r *PickupRepo) SumItemQuantity(ctx context.Context) (uint64, error) {
	var n sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(quantity),0) FROM pickup_items").Scan(&n)
	if err != nil {
		return 0, err
	}
	return uint64(n.Int64), nil
}
