// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Transition validation errors
	CodeRuleViolation      Code = "RULE_VIOLATION"
	CodeWindowMissing      Code = "VALIDITY_WINDOW_MISSING"
	CodeIntentAmbiguous    Code = "INTENT_AMBIGUOUS"
	CodeIntentUnrecognized Code = "INTENT_UNRECOGNIZED"

	// Amount errors
	CodeAmountInvalid          Code = "AMOUNT_INVALID"
	CodeAmountCurrencyMismatch Code = "AMOUNT_CURRENCY_MISMATCH"

	// Builder errors
	CodeStateTypeMismatch Code = "STATE_TYPE_MISMATCH"

	// Funds selection errors
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// Registry errors
	CodeContractUnknown Code = "CONTRACT_UNKNOWN"

	// Vault/storage errors
	CodeNotFound        Code = "NOT_FOUND"
	CodeRecordConsumed  Code = "RECORD_ALREADY_CONSUMED"
	CodeProposalApplied Code = "PROPOSAL_ALREADY_APPLIED"
	CodeFilterInvalid   Code = "FILTER_INVALID"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed proposals, bad input
	case CodeIntentAmbiguous,
		CodeIntentUnrecognized,
		CodeAmountInvalid,
		CodeAmountCurrencyMismatch,
		CodeStateTypeMismatch,
		CodeFilterInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - the ledger state disallows the transition
	case CodeRuleViolation,
		CodeWindowMissing,
		CodeInsufficientFunds,
		CodeRecordConsumed,
		CodeProposalApplied:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeContractUnknown:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
