// internal/stages/internalsimilarity/models.go
package internalsimilarity

// Match is one sufficiently-similar active application, reported in the
// review metadata sorted by descending similarity.
type Match struct {
	ApplicationID string  `json:"applicationId"`
	Title         string  `json:"title"`
	SubmitterID   string  `json:"submitterId"`
	Similarity    float64 `json:"similarity"`
}
