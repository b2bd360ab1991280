package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxRunner runs fn inside a single transaction
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Purger deletes everything stored for a content hash atomically
type Purger struct {
	db TxRunner
}

// NewPurger creates a new purger
func NewPurger(db TxRunner) *Purger {
	return &Purger{db: db}
}

// PurgeReport removes the payloads and history entry for a content hash and
// reports whether either existed
func (p *Purger) PurgeReport(ctx context.Context, contentHash string) (bool, error) {
	var found bool
	err := p.db.WithTx(ctx, func(tx pgx.Tx) error {
		payloads, err := NewPayloadRepository(tx).DeletePayloads(ctx, contentHash)
		if err != nil {
			return err
		}
		removed, err := NewReportRepository(tx).DeleteReport(ctx, contentHash)
		if err != nil {
			return err
		}
		found = payloads > 0 || removed
		return nil
	})
	return found, err
}
