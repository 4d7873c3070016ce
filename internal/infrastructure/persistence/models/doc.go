// Package models holds the GORM rows for findings, scan jobs, schedules and
// report metadata, along with the mapping to and from the domain types.
// Domain packages never import this package.
package models
