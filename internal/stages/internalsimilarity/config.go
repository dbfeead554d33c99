// internal/stages/internalsimilarity/config.go
package internalsimilarity

import (
	"review-pipeline/internal/tables"
)

type Config struct {
	Stopwords []string
	// MinWordLen drops short tokens before the Jaccard comparison.
	MinWordLen int
	// KeepThreshold is the lowest pair similarity worth reporting.
	KeepThreshold float64
	// RejectThreshold rejects the candidate outright.
	RejectThreshold float64
	TextWeight      float64
	TitleWeight     float64
}

func LoadConfig(t *tables.Tables) *Config {
	return &Config{
		Stopwords:       t.Similarity.Stopwords,
		MinWordLen:      3,
		KeepThreshold:   0.3,
		RejectThreshold: 0.8,
		TextWeight:      0.6,
		TitleWeight:     0.4,
	}
}
