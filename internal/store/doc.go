// Package store keeps the history of harness runs in SQLite.
//
// Each run is one row in runs plus one row per case in case_results. Run IDs
// are assigned by the caller (UUIDv7 from the CLI) so they sort by creation
// time; listings order by started_at, then id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
