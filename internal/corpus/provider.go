// internal/corpus/provider.go

// Package corpus supplies the external comparison dataset the external
// similarity stage scores against. The pipeline never mutates corpus data.
package corpus

import (
	"context"

	"review-pipeline/internal/models"
)

// FetchOptions narrows a corpus fetch. Similarity analysis must set
// Exhaustive so no default limit hides a match.
type FetchOptions struct {
	Category   string
	Limit      int
	Exhaustive bool
}

type Provider interface {
	FetchCorpus(ctx context.Context, opts FetchOptions) ([]models.CorpusEntry, error)
}

// StaticProvider serves a fixed entry slice; used in tests and for seed data.
type StaticProvider struct {
	Entries []models.CorpusEntry
}

func (p *StaticProvider) FetchCorpus(_ context.Context, opts FetchOptions) ([]models.CorpusEntry, error) {
	entries := p.Entries
	if !opts.Exhaustive && opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}
