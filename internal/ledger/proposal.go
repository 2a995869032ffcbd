package ledger

import "time"

// Proposal is a draft ledger transition: the records it consumes, the
// records it creates, the intents declared over them, and an optional
// validity window. Proposals are plain values; validation happens in a
// Registry.
type Proposal struct {
	// Coordinator is the party expected to finalize the transition. It is
	// informational and never consulted by contract validation.
	Coordinator Party

	Inputs   []StateAndRef
	Outputs  []State
	Commands []Command
	Window   *TimeWindow
}

type proposalEnvelope struct {
	Coordinator Party             `json:"coordinator"`
	Inputs      []refEnvelope     `json:"inputs"`
	Outputs     []stateEnvelope   `json:"outputs"`
	Commands    []commandEnvelope `json:"commands"`
	Window      *windowEnvelope   `json:"window,omitempty"`
}

type refEnvelope struct {
	TxHash string `json:"tx_hash"`
	Index  int    `json:"index"`
}

type stateEnvelope struct {
	Contract string `json:"contract"`
	Data     any    `json:"data"`
}

type commandEnvelope struct {
	Data    any         `json:"data"`
	Signers []PublicKey `json:"signers"`
}

type windowEnvelope struct {
	NotBefore string `json:"not_before,omitempty"`
	NotAfter  string `json:"not_after,omitempty"`
}

// Hash computes the proposal's content-addressed identity. Structurally
// equal proposals hash identically regardless of how they were built.
func (p Proposal) Hash() (TxHash, error) {
	envelope := proposalEnvelope{
		Coordinator: p.Coordinator,
		Inputs:      make([]refEnvelope, 0, len(p.Inputs)),
		Outputs:     make([]stateEnvelope, 0, len(p.Outputs)),
		Commands:    make([]commandEnvelope, 0, len(p.Commands)),
	}
	for _, in := range p.Inputs {
		envelope.Inputs = append(envelope.Inputs, refEnvelope{
			TxHash: in.Ref.TxHash.String(),
			Index:  in.Ref.Index,
		})
	}
	for _, out := range p.Outputs {
		envelope.Outputs = append(envelope.Outputs, stateEnvelope{
			Contract: out.ContractID(),
			Data:     out,
		})
	}
	for _, cmd := range p.Commands {
		envelope.Commands = append(envelope.Commands, commandEnvelope{
			Data:    cmd.Data,
			Signers: cmd.Signers,
		})
	}
	if p.Window != nil {
		w := &windowEnvelope{}
		if p.Window.NotBefore != nil {
			w.NotBefore = p.Window.NotBefore.UTC().Format(time.RFC3339Nano)
		}
		if p.Window.NotAfter != nil {
			w.NotAfter = p.Window.NotAfter.UTC().Format(time.RFC3339Nano)
		}
		envelope.Window = w
	}
	return CanonicalHash(envelope)
}
