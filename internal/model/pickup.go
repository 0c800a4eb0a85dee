package model

import "time"

// PickupStatus enumerates the lifecycle states of a pickup request.
// A request starts as pending and only ever moves forward; completed
// is terminal. The allowed transitions live in internal/lifecycle.
type PickupStatus string

const (
	StatusPending    PickupStatus = "pending"
	StatusAssigned   PickupStatus = "assigned"
	StatusInProgress PickupStatus = "in_progress"
	StatusCompleted  PickupStatus = "completed"
)

// Urgency levels accepted on a pickup request. Unknown values are
// normalized to UrgencyStandard at creation.
const (
	UrgencyLow      = "low"
	UrgencyStandard = "standard"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
)

// ValidUrgency reports whether s is one of the accepted urgency levels.
func ValidUrgency(s string) bool {
	switch s {
	case UrgencyLow, UrgencyStandard, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// PickupRequest mirrors the `pickup_requests` table. ResidentID is set
// at creation and never changes. AssignedCollectorID is NULL exactly
// while the request is pending: the assignment update writes the
// collector and the status flip in a single statement so the pair can
// never be observed out of sync.
//
// Fields:
//  ID                  – primary key identifier.
//  ResidentID          – owning resident, immutable after creation.
//  Address             – street address for the pickup.
//  PreferredTime       – free-form preferred time window (nullable).
//  Urgency             – one of low, standard, medium, high.
//  Status              – current lifecycle state.
//  AssignedCollectorID – collector handling the request (nullable).
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type PickupRequest struct {
	ID                  uint64       // pickup_requests.id
	ResidentID          uint64       // pickup_requests.resident_id
	Address             string       // pickup_requests.address
	PreferredTime       *string      // pickup_requests.preferred_time (nullable)
	Urgency             string       // pickup_requests.urgency
	Status              PickupStatus // pickup_requests.status
	AssignedCollectorID *uint64      // pickup_requests.assigned_collector_id (nullable)
	CreatedAt           time.Time    // pickup_requests.created_at
	UpdatedAt           time.Time    // pickup_requests.updated_at
}

// PickupItem mirrors the `pickup_items` table. Items are created in
// the same transaction as their parent request and are immutable
// afterwards; no item-level update or delete operation exists.
//
// Fields:
//  ID              – primary key identifier.
//  PickupRequestID – owning pickup request.
//  CategoryID      – reference into item_categories.
//  Quantity        – number of items, at least 1.
type PickupItem struct {
	ID              uint64 // pickup_items.id
	PickupRequestID uint64 // pickup_items.pickup_request_id
	CategoryID      uint64 // pickup_items.category_id
	Quantity        uint32 // pickup_items.quantity
}

// ItemCategory mirrors the `item_categories` reference table. The
// service only reads categories; managing them belongs to a separate
// admin surface.
type ItemCategory struct {
	ID          uint64  // item_categories.id
	Name        string  // item_categories.name
	HazardLevel int     // item_categories.hazard_level
	Description *string // item_categories.description (nullable)
}
