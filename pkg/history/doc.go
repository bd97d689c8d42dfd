// Package history stores a record of every validation run.
//
// A Run keeps the outcome counters of a validation together with the full
// JSON report so that past results can be listed and re-rendered. Two
// backends implement Store: MemoryStore for tests and short-lived
// processes, and SQLiteStore for persistence. SQLiteStore works with either
// the cgo driver github.com/mattn/go-sqlite3 ("sqlite3") or the pure Go
// driver modernc.org/sqlite ("sqlite").
//
// Pruner applies the retention policy (maximum age and maximum run count),
// and Scheduler runs it on a cron schedule.
package history
