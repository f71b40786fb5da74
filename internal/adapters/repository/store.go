// Package repository defines the recent-case store interface and errors.
package repository

import (
	"context"

	"github.com/nephroworks/cdss/internal/domain/model"
)

// Store keeps a bounded window of recent assessments for the /recent and
// /stats read paths. Entries are summaries only; full observations are
// never retained in memory beyond their request.
type Store interface {
	// Record adds a case summary, evicting the oldest when full.
	Record(ctx context.Context, c model.CaseSummary)

	// Recent returns up to n summaries, newest first.
	Recent(ctx context.Context, n int) ([]model.CaseSummary, error)

	// Count returns the number of summaries currently held.
	Count(ctx context.Context) int
}
