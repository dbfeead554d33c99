// internal/stages/externalsimilarity/models.go
package externalsimilarity

// ConceptBreakdown holds the five weighted sub-similarities against one
// corpus entry.
type ConceptBreakdown struct {
	Problem       float64 `json:"problem"`
	Industry      float64 `json:"industry"`
	Solution      float64 `json:"solution"`
	Technology    float64 `json:"technology"`
	BusinessModel float64 `json:"businessModel"`
	Combined      float64 `json:"combined"`
}

// NameMatch records a corpus entry whose name is close enough to the
// application title to enter the concept comparison.
type NameMatch struct {
	EntryName   string  `json:"entryName"`
	MatchedName string  `json:"matchedName"`
	Similarity  float64 `json:"similarity"`
	Exact       bool    `json:"exact"`
}
