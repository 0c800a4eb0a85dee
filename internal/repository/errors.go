// Package repository implements the durable store adapter over MySQL.
// Not-found conditions surface as sql.ErrNoRows and handlers map them
// to 404 per operation; only the duplicate-email case needs its own
// sentinel because the driver reports it as a generic exec error.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// index on users.email. Handlers translate this into a conflict
// response.
var ErrEmailExists = errors.New("email already exists")
