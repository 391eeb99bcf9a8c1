package entities

// ClaimFeatures is the flattened feature record the deployed denial-risk
// predictor consumes. Field names match the scoring service's request
// schema exactly.
type ClaimFeatures struct {
	CPT             string  `json:"cpt"`
	Payer           string  `json:"payer"`
	POS             string  `json:"pos"`
	Duration        int     `json:"duration"`
	ICDCount        int     `json:"icd_count"`
	ModifierCount   int     `json:"modifier_count"`
	HasModifier25   int     `json:"has_modifier_25"`
	ProceduresCount int     `json:"procedures_count"`
	PastDenialRate  float64 `json:"past_denial_rate"`
	PrimaryICD      string  `json:"primary_icd"`
}

// DenialRiskScore is the scoring service's response.
type DenialRiskScore struct {
	RiskScore float64 `json:"risk_score"`
	Predicted int     `json:"predicted"`
	ICDCCSID  string  `json:"icd_ccs_id"`
}
