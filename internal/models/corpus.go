// internal/models/corpus.go
package models

// CorpusEntry is one prior-art company in the external comparison dataset.
// Read-only; supplied by the corpus provider.
type CorpusEntry struct {
	Name        string   `json:"name"`
	FormerNames []string `json:"formerNames,omitempty"`
	OneLiner    string   `json:"oneLiner"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Subindustry string   `json:"subindustry,omitempty"`
}
