// Package queue defines message payloads exchanged over the message broker.
package queue

// PickupAssignedEvent is published when a pending pickup request is
// assigned to a collector. It carries enough context for downstream
// consumers (routing, notifications) without querying the primary
// database.
type PickupAssignedEvent struct {
	PickupID    uint64 `json:"pickup_id"`
	ResidentID  uint64 `json:"resident_id"`
	CollectorID uint64 `json:"collector_id"`
	Address     string `json:"address"`
	Urgency     string `json:"urgency"`
	AssignedAt  string `json:"assigned_at"`
}

// PickupCompletedEvent is published when a pickup request reaches its
// terminal completed state.
type PickupCompletedEvent struct {
	PickupID    uint64 `json:"pickup_id"`
	ResidentID  uint64 `json:"resident_id"`
	CollectorID uint64 `json:"collector_id"`
	ItemCount   int    `json:"item_count"`
	CompletedAt string `json:"completed_at"`
}
