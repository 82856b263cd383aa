package storage

import "database/sql"

// nullableID returns sql.NullInt64 for optional row references.
// Returns NULL for non-positive ids (unowned events and runs).
func nullableID(id int64) sql.NullInt64 {
	if id <= 0 {
		return sql.NullInt64{Valid: false}
	}

	return sql.NullInt64{Int64: id, Valid: true}
}

// nullableString returns sql.NullString for optional text fields.
// Returns NULL for empty strings (Go zero value = DB NULL).
func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{Valid: false}
	}

	return sql.NullString{String: value, Valid: true}
}

// nullableInt returns sql.NullInt32 for optional integer fields.
// Returns NULL if value is zero.
//
//nolint:gosec
func nullableInt(value int) sql.NullInt32 {
	if value == 0 {
		return sql.NullInt32{Valid: false}
	}

	return sql.NullInt32{Int32: int32(value), Valid: true}
}
