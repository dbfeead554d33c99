// internal/stages/externalsimilarity/config.go
package externalsimilarity

import (
	"review-pipeline/internal/tables"
)

type Config struct {
	Stopwords       []string
	BusinessConcept []string
	Problem         []string
	Solution        []string
	BusinessModel   []string
	Technology      []string
	Industry        []string

	// Name phase thresholds.
	NameMatchThreshold  float64
	ExactNameThreshold  float64
	ExactRejectConcept  float64
	FuzzyRejectConcept  float64
	ExactRejectScore    float64
	MinContainmentChars int

	// Concept phase.
	ConceptRejectThreshold float64
	ProblemWeight          float64
	IndustryWeight         float64
	SolutionWeight         float64
	TechnologyWeight       float64
	BusinessModelWeight    float64
}

func LoadConfig(t *tables.Tables) *Config {
	return &Config{
		Stopwords:       t.Similarity.Stopwords,
		BusinessConcept: t.Similarity.BusinessConcept,
		Problem:         t.Similarity.Problem,
		Solution:        t.Similarity.Solution,
		BusinessModel:   t.Similarity.BusinessModel,
		Technology:      t.Similarity.Technology,
		Industry:        t.Similarity.Industry,

		NameMatchThreshold:  0.85,
		ExactNameThreshold:  0.95,
		ExactRejectConcept:  0.1,
		FuzzyRejectConcept:  0.3,
		ExactRejectScore:    0.95,
		MinContainmentChars: 3,

		ConceptRejectThreshold: 0.4,
		ProblemWeight:          0.3,
		IndustryWeight:         0.3,
		SolutionWeight:         0.2,
		TechnologyWeight:       0.15,
		BusinessModelWeight:    0.05,
	}
}
