package model

// Policy is one record from the policies dataset.
type Policy struct {
	PolicyID      string `json:"policy_id"`
	CustomerName  string `json:"customer_name"`
	State         string `json:"state"`
	CoverageLimit int    `json:"coverage_limit"`
	Deductible    int    `json:"deductible"`
	PolicyType    string `json:"policy_type"`
	Active        bool   `json:"active"`
}

// Claim is one record from the claims dataset.
type Claim struct {
	ClaimID            string   `json:"claim_id"`
	PolicyID           string   `json:"policy_id"`
	LossType           string   `json:"loss_type"`
	State              string   `json:"state"`
	EstimatedDamage    int      `json:"estimated_damage"`
	DocumentsSubmitted []string `json:"documents_submitted"`
	Status             string   `json:"status"`
}

// DocumentCheck is the outcome of comparing submitted documents against the
// rules for a loss type.
type DocumentCheck struct {
	RequiredDocuments []string `json:"required_documents"`
	MissingDocuments  []string `json:"missing_documents"`
	Complete          bool     `json:"complete"`
}
