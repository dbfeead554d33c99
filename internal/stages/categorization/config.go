// internal/stages/categorization/config.go
package categorization

import (
	"review-pipeline/internal/tables"
)

type Config struct {
	// Categories is ordered; the first category wins score ties.
	Categories []tables.Category
	Stopwords  []string
}

func LoadConfig(t *tables.Tables) *Config {
	return &Config{
		Categories: t.Categories,
		Stopwords:  t.Similarity.Stopwords,
	}
}
