package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/tracklift/internal/models"
)

var (
	_ models.Repository[*models.Run]      = (*RunRepository)(nil)
	_ models.Repository[*models.RunTrack] = (*RunTrackRepository)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx, so a repository can run inside a transaction.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence increments and returns the counter in "<table>_sequence".
//
// The increment and read are one statement, so concurrent callers never share a number.
// Sequences give runs their "#N" in history output and order a run's tracks.
func NextSequence(q querier, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var sequence int
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
