// Package vault keeps the books of unconsumed ledger records: applying
// a verified proposal consumes its inputs and files its outputs, and
// queries answer who currently holds what. The vault never re-implements
// contract rules; acceptance is decided by the contract registry alone.
package vault

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/commercialpaper/internal/cash"
	"github.com/louisbranch/commercialpaper/internal/ledger"
	"github.com/louisbranch/commercialpaper/internal/paper"
)

// Record is one ledger output tracked by the vault, projected onto the
// columns queries can filter by. States from contracts the vault does
// not recognize are still booked; they just expose no columns beyond
// the contract id.
type Record struct {
	Ref        ledger.StateRef
	Contract   string
	Owner      string
	OwnerKey   ledger.PublicKey
	Currency   string
	Quantity   int64
	MaturesAt  *time.Time
	StateJSON  []byte
	RecordedAt time.Time
}

// Query selects unconsumed records.
type Query struct {
	// Filter is an AIP-160 expression over owner, owner_key, contract,
	// currency, quantity and matures_at. Empty matches every record.
	Filter string
	// Limit caps the number of returned records; zero or less means no
	// cap.
	Limit int
}

// Store persists vault records.
type Store interface {
	// ApplyRecords atomically marks the consumed references as spent by
	// the given proposal and files the produced records.
	ApplyRecords(ctx context.Context, consumed []ledger.StateRef, produced []Record, by ledger.TxHash) error
	// QueryRecords lists unconsumed records matching the query.
	QueryRecords(ctx context.Context, q Query) ([]Record, error)
	// Close releases the underlying storage handle.
	Close() error
}

// Service applies proposals to a store and answers holdings queries.
type Service struct {
	registry *ledger.Registry
	store    Store
	tracer   trace.Tracer
}

// NewService wires a vault service over a contract registry and a
// record store.
func NewService(registry *ledger.Registry, store Store) *Service {
	return &Service{
		registry: registry,
		store:    store,
		tracer:   otel.Tracer("commercialpaper/vault"),
	}
}

// Apply verifies the proposal through the contract registry and, when
// it is accepted, consumes its inputs and files its outputs under the
// proposal hash. A rejected proposal leaves the books untouched.
func (s *Service) Apply(ctx context.Context, p ledger.Proposal) (ledger.TxHash, error) {
	ctx, span := s.tracer.Start(ctx, "vault.apply")
	defer span.End()

	if err := s.registry.Verify(p); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "proposal rejected")
		return ledger.TxHash{}, err
	}

	hash, err := p.Hash()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "proposal hash failed")
		return ledger.TxHash{}, fmt.Errorf("hash proposal: %w", err)
	}
	span.SetAttributes(
		attribute.String("proposal.hash", hash.String()),
		attribute.Int("proposal.inputs", len(p.Inputs)),
		attribute.Int("proposal.outputs", len(p.Outputs)),
	)

	consumed := make([]ledger.StateRef, 0, len(p.Inputs))
	for _, in := range p.Inputs {
		consumed = append(consumed, in.Ref)
	}
	produced := make([]Record, 0, len(p.Outputs))
	for i, out := range p.Outputs {
		record, err := project(ledger.StateRef{TxHash: hash, Index: i}, out)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "state projection failed")
			return ledger.TxHash{}, err
		}
		produced = append(produced, record)
	}

	if err := s.store.ApplyRecords(ctx, consumed, produced, hash); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "bookkeeping failed")
		return ledger.TxHash{}, err
	}
	return hash, nil
}

// Query lists unconsumed records matching the query.
func (s *Service) Query(ctx context.Context, q Query) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "vault.query")
	defer span.End()

	records, err := s.store.QueryRecords(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "query failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// project derives the queryable columns for one output state.
func project(ref ledger.StateRef, state ledger.State) (Record, error) {
	data, err := ledger.CanonicalJSON(state)
	if err != nil {
		return Record{}, fmt.Errorf("encode state at %s: %w", ref, err)
	}

	record := Record{Ref: ref, Contract: state.ContractID(), StateJSON: data}
	switch s := state.(type) {
	case paper.Record:
		record.Owner = s.Owner.Name
		record.OwnerKey = s.Owner.Key
		record.Currency = s.FaceValue.Currency
		record.Quantity = s.FaceValue.Quantity
		maturity := s.MaturityAt.UTC()
		record.MaturesAt = &maturity
	case cash.State:
		record.Owner = s.Owner.Name
		record.OwnerKey = s.Owner.Key
		record.Currency = s.Amount.Currency
		record.Quantity = s.Amount.Quantity
	}
	return record, nil
}
