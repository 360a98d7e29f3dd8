// Package db embeds the PostgreSQL schema.
package db

import _ "embed"

// Schema holds idempotent DDL for the catalog, coupon, customer and order
// tables.
//
//go:embed migrations/001_schema.sql
var Schema string
