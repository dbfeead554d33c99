// internal/stages/costanalysis/models.go
package costanalysis

// CostEstimate is the itemized estimate kept in review metadata.
type CostEstimate struct {
	Complexity     string  `json:"complexity"`
	Development    float64 `json:"development"`
	Infrastructure float64 `json:"infrastructure"`
	ThirdParty     float64 `json:"thirdParty"`
	Operational    float64 `json:"operational"`
	Total          float64 `json:"total"`
}
