package memory

import (
	"context"
	"sync"

	"practiso-archive-service/internal/domain"
)

// Catalog keeps archive records in memory, used when Postgres is not
// configured and as a test double.
type Catalog struct {
	mu      sync.RWMutex
	records []domain.ArchiveRecord
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) Record(_ context.Context, rec domain.ArchiveRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far.
func (c *Catalog) Records() []domain.ArchiveRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ArchiveRecord, len(c.records))
	copy(out, c.records)
	return out
}
