// Package catalog owns the two mutable collections of the bot: the subject
// catalog and the weekly schedule.
//
// A Store is loaded once at process start and saved in full after every
// mutation. Persistence is pluggable through the Persister interface; the
// JSON file backend lives here, the SQLite backend in internal/store.
//
// # Invariants
//
//   - Subject keys are unique and never change once assigned (rename only
//     touches the display name).
//   - Every key in every day's lesson list exists in the subject catalog.
//     DeleteSubject strips the key from all days in the same critical
//     section that saves the result.
//   - A day absent from the schedule ("no schedule defined") is distinct from
//     a day that is present with an empty lesson list. Both survive a
//     save/load round-trip.
//
// # Persistence policy
//
// Mutations are applied to memory first and then persisted. When the save
// fails the mutation stays applied and the caller receives a *PersistError;
// the next successful save writes the full state again.
//
// # Concurrency
//
// All methods are safe for concurrent use. One RWMutex guards the whole
// catalog: mutations hold the write lock across mutate+save, queries hold the
// read lock and return copies.
package catalog
