package models

// Requirement is one RFP requirement a proposal is checked against.
type Requirement struct {
	ID              string   `json:"id"`
	RequirementText string   `json:"requirement_text"`
	IsMandatory     bool     `json:"is_mandatory"`
	Weight          *float64 `json:"weight,omitempty"`
}

// ProposalAnalysisRequest is the body of a proposal compliance analysis.
type ProposalAnalysisRequest struct {
	RFPTitle            string        `json:"rfpTitle"`
	RFPDescription      *string       `json:"rfpDescription,omitempty"`
	Requirements        []Requirement `json:"requirements"`
	ProposalContent     *string       `json:"proposalContent,omitempty"`
	UploadedDocsSummary *string       `json:"uploadedDocsSummary,omitempty"`
}

// Gap statuses.
const (
	GapMet     = "met"
	GapPartial = "partial"
	GapMissing = "missing"
)

// GapFinding is the model's assessment of one requirement.
type GapFinding struct {
	RequirementID  string `json:"requirementId"`
	Status         string `json:"status"`
	Finding        string `json:"finding"`
	Recommendation string `json:"recommendation"`
}

// ProposalAnalysis is the compliance report returned to a vendor.
type ProposalAnalysis struct {
	ComplianceScore int          `json:"complianceScore"`
	GapAnalysis     []GapFinding `json:"gapAnalysis"`
	DraftProposal   string       `json:"draftProposal"`
	DealBreakers    []string     `json:"dealBreakers"`
	Strengths       []string     `json:"strengths"`
}
