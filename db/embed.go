// Package db provides the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL for all tables, the sales_summary view, and the
// pg_notify triggers feeding the real-time event listener.
//
//go:embed migrations/001_schema.sql
var Schema string
