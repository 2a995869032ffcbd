// Package paper implements the commercial paper contract: the record
// type, its lifecycle intents, the validation rules and the proposal
// builders.
package paper

import (
	"fmt"
	"time"

	"github.com/louisbranch/commercialpaper/internal/ledger"
)

// ContractID is the registry identifier for the commercial paper
// contract.
const ContractID = "commercialpaper/paper"

// Issuance identifies a lineage of commercial paper: the issuing party
// plus an opaque reference distinguishing parallel programmes by the
// same issuer.
type Issuance struct {
	Party     ledger.Party
	Reference []byte
}

// Record is one commercial paper obligation on the ledger: a promise by
// the issuance party to pay the face value to whoever owns the record
// at maturity.
type Record struct {
	Issuance   Issuance
	Owner      ledger.Party
	FaceValue  ledger.Amount
	MaturityAt time.Time
}

// ContractID implements ledger.State.
func (r Record) ContractID() string { return ContractID }

// WithOwner returns a copy of the record held by a new owner. All other
// fields are unchanged.
func (r Record) WithOwner(owner ledger.Party) Record {
	r.Owner = owner
	return r
}

// GroupKey derives the lineage key used to group proposal states: the
// record with its owner erased. Papers from the same issuance with the
// same terms belong to one group no matter who holds them, so ownership
// is the only field allowed to vary within a group.
func (r Record) GroupKey() string {
	erased := r.WithOwner(ledger.AnonymousParty)
	erased.MaturityAt = erased.MaturityAt.UTC()
	key, err := ledger.CanonicalJSON(erased)
	if err != nil {
		// Record fields always encode to JSON; keep a literal fallback.
		return fmt.Sprintf("%+v", erased)
	}
	return string(key)
}

// String renders the record for logs and demo output.
func (r Record) String() string {
	return fmt.Sprintf("%s commercial paper held by %s maturing %s",
		r.FaceValue, r.Owner.Name, r.MaturityAt.UTC().Format("2006-01-02"))
}
