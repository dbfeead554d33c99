// internal/stages/categorization/models.go
package categorization

// CategoryScore is one category's keyword hit count, kept in the review
// metadata so operators can see why a category won.
type CategoryScore struct {
	Category string `json:"category"`
	Hits     int    `json:"hits"`
}
