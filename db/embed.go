// Package db carries the embedded schema applied at startup.
package db

import _ "embed"

// Schema is the idempotent DDL for every table the backend owns.
//
//go:embed migrations/001_schema.sql
var Schema string
