// Package database owns the SQLite file shared by the project store and
// the audit trail.
//
// Schema changes ship inside the binary as paired scripts
// (YYYYMMDD_HHMMSS_name.up.sql and .down.sql, registered by the migrations
// package). Migrate applies the pending ones in version order inside one
// transaction each and records a checksum of every up script in
// schema_migrations. It refuses to run when an applied script was edited
// afterwards or when the file is at a version this binary does not know.
// MigrateDown reverts the newest versions and MigrationStatus reports what is
// applied.
package database
