package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                = "UNKNOWN"
	CodeRuleViolation          = "RULE_VIOLATION"
	CodeWindowMissing          = "VALIDITY_WINDOW_MISSING"
	CodeIntentAmbiguous        = "INTENT_AMBIGUOUS"
	CodeIntentUnrecognized     = "INTENT_UNRECOGNIZED"
	CodeAmountInvalid          = "AMOUNT_INVALID"
	CodeAmountCurrencyMismatch = "AMOUNT_CURRENCY_MISMATCH"
	CodeStateTypeMismatch      = "STATE_TYPE_MISMATCH"
	CodeInsufficientFunds      = "INSUFFICIENT_FUNDS"
	CodeContractUnknown        = "CONTRACT_UNKNOWN"
	CodeNotFound               = "NOT_FOUND"
	CodeRecordConsumed         = "RECORD_ALREADY_CONSUMED"
	CodeProposalApplied        = "PROPOSAL_ALREADY_APPLIED"
	CodeFilterInvalid          = "FILTER_INVALID"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "An unexpected error occurred",

		// Transition validation errors
		CodeRuleViolation:      "Transition rejected: {{.Rule}}",
		CodeWindowMissing:      "A validity window is required for {{.Intent}} transitions",
		CodeIntentAmbiguous:    "Expected exactly one declared intent, found {{.Count}}",
		CodeIntentUnrecognized: "Transition intent {{.Intent}} is not recognized",

		// Amount errors
		CodeAmountInvalid:          "Amount {{.Value}} is not a valid quantity",
		CodeAmountCurrencyMismatch: "Cannot combine amounts in {{.Left}} and {{.Right}}",

		// Builder errors
		CodeStateTypeMismatch: "Expected a {{.Want}} state, got {{.Got}}",

		// Funds selection errors
		CodeInsufficientFunds: "Insufficient funds: requested {{.Requested}}, available {{.Available}}",

		// Registry errors
		CodeContractUnknown: "No contract registered for {{.Contract}}",

		// Vault/storage errors
		CodeNotFound:        "The requested ledger record was not found",
		CodeRecordConsumed:  "Ledger record {{.Ref}} has already been consumed",
		CodeProposalApplied: "Proposal {{.Hash}} has already been applied",
		CodeFilterInvalid:   "The query filter expression is invalid",
	},
}
