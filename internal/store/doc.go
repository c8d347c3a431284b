// Package store provides a SQLite-backed catalog.Persister.
//
// A snapshot is kept in three tables:
//   - subjects: key, name, homework and the subject's list position
//   - days: the days present in the schedule
//   - lessons: (day, position) -> subject key
//
// plus a single snapshot_meta row whose presence marks that a snapshot has
// been saved. Save replaces all rows in one transaction, so readers never
// observe a half-written catalog.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes live in migrations/ and are applied by golang-migrate on
// Open.
package store
