package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"practiso-archive-service/internal/domain"
)

// Catalog records written archives in Postgres.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) Record(ctx context.Context, rec domain.ArchiveRecord) error {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO archives (session_id, path, quiz_count, byte_size, fallback, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.SessionID, rec.Path, rec.QuizCount, rec.ByteSize, rec.Fallback, rec.SavedAt)
	if err != nil {
		return fmt.Errorf("record archive: %w", err)
	}
	return nil
}

// Recent lists the most recently written archives, newest first.
func (c *Catalog) Recent(ctx context.Context, limit int) ([]domain.ArchiveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.pool.Query(ctx,
		`SELECT session_id, path, quiz_count, byte_size, fallback, saved_at
		 FROM archives ORDER BY saved_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var records []domain.ArchiveRecord
	for rows.Next() {
		var rec domain.ArchiveRecord
		if err := rows.Scan(&rec.SessionID, &rec.Path, &rec.QuizCount, &rec.ByteSize, &rec.Fallback, &rec.SavedAt); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
