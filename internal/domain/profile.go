package domain

// AnalysisProfile describes the operator's own company. It is supplied to
// each analysis and never mutated by the pipeline.
type AnalysisProfile struct {
	Website          string `json:"website"`
	ValueProposition string `json:"value_proposition"`
	ICP              string `json:"icp"`
}

// IsComplete reports whether all profile fields are filled in
func (p AnalysisProfile) IsComplete() bool {
	return p.Website != "" && p.ValueProposition != "" && p.ICP != ""
}
