package models

// Guideline is the consumable artifact produced by Distill: an
// imperative rule plus rationale and examples. Guidelines carry no
// enforced uniqueness; deduplication, if any, is the distillation
// strategy's concern.
type Guideline struct {
	Concern   string `json:"concern"`
	Guideline string `json:"guideline"`
	Rationale string `json:"rationale"`
	Examples  string `json:"examples"`
	ClusterID *int   `json:"cluster_id,omitempty"`
}
