// Package persistence provides database repository implementations.
// It uses GORM as the ORM layer to store findings, scan jobs, schedules
// and report metadata. Entities are validated before every write and
// all queries are parameterized.
package persistence
