package paper

// Intent declares which commercial paper transition a proposal performs.
// The set is closed; anything else is rejected during validation.
type Intent string

const (
	// IntentIssue creates new paper on the ledger.
	IntentIssue Intent = "issue"
	// IntentMove transfers ownership of existing paper.
	IntentMove Intent = "move"
	// IntentRedeem extinguishes matured paper against payment.
	IntentRedeem Intent = "redeem"
)
