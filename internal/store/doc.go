// Package store persists customers and their support tickets in SQLite.
//
// The schema is created automatically on open. Customers carry an
// active/disabled status; tickets reference their customer and carry an
// open/in_progress/resolved status plus a low/medium/high priority, both
// enforced with CHECK constraints.
//
// # Validation
//
// Write operations validate before touching the database and return the
// shared sentinels from the toolgate package (ErrNotFound,
// ErrInvalidField, ErrInvalidStatus, ErrInvalidPriority) so callers can
// map failures without string matching.
//
// # Seeding
//
// Seed data ships as a TOML fixture embedded in the binary; an external
// fixture file can replace it. Fixtures carry explicit timestamps so
// newest-first ticket ordering is stable across runs.
package store
