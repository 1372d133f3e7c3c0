// Package db embeds the SQL schema for the postgres order store.
package db

import _ "embed"

// Schema creates the orders table when it does not exist.
//
//go:embed migrations/001_schema.sql
var Schema string
