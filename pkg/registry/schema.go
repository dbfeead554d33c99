// pkg/registry/schema.go
package registry

type CorpusRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Entries     []Entry `json:"entries"`
}

type Entry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	FormerNames []string `json:"formerNames,omitempty"`
	OneLiner    string   `json:"oneLiner"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	Subindustry string   `json:"subindustry,omitempty"`
	Source      string   `json:"source,omitempty"`
	AddedAt     string   `json:"addedAt,omitempty"`
}
