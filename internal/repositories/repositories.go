// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, deletes, and sequence generation.
package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide human-readable ordering for entities (e.g., scan #12, session #3).
// They are NOT exposed in CLI output but used internally for sorting and debugging.
// The UPDATE..RETURNING form keeps increment and read in one statement, so no
// explicit transaction is needed.
func NextSequence(db *sql.DB, table string) (int, error) {
	sequenceTable := table + "_sequence"

	var sequence int
	err := db.QueryRow(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1 RETURNING value", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s: %w", sequenceTable, err)
	}

	return sequence, nil
}
