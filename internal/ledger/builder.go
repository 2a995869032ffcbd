package ledger

// Builder accumulates the pieces of a proposal in order. It performs no
// validation; run the finished proposal through a Registry before acting
// on it. A Builder is not safe for concurrent use.
type Builder struct {
	coordinator Party
	inputs      []StateAndRef
	outputs     []State
	commands    []Command
	window      *TimeWindow
}

// NewBuilder starts an empty proposal coordinated by the given party.
func NewBuilder(coordinator Party) *Builder {
	return &Builder{coordinator: coordinator}
}

// AddInput appends a resolved input record.
func (b *Builder) AddInput(in StateAndRef) {
	b.inputs = append(b.inputs, in)
}

// AddOutput appends an output record.
func (b *Builder) AddOutput(out State) {
	b.outputs = append(b.outputs, out)
}

// AddCommand appends a command carrying the given intent data and signers.
func (b *Builder) AddCommand(data any, signers ...PublicKey) {
	b.commands = append(b.commands, Command{Data: data, Signers: signers})
}

// SetWindow replaces the proposal's validity window. A nil window clears
// it.
func (b *Builder) SetWindow(w *TimeWindow) {
	if w == nil {
		b.window = nil
		return
	}
	copied := *w
	b.window = &copied
}

// Proposal snapshots the builder's current contents. Later mutations of
// the builder do not affect the returned proposal.
func (b *Builder) Proposal() Proposal {
	p := Proposal{
		Coordinator: b.coordinator,
		Inputs:      make([]StateAndRef, len(b.inputs)),
		Outputs:     make([]State, len(b.outputs)),
		Commands:    make([]Command, len(b.commands)),
	}
	copy(p.Inputs, b.inputs)
	copy(p.Outputs, b.outputs)
	copy(p.Commands, b.commands)
	if b.window != nil {
		copied := *b.window
		p.Window = &copied
	}
	return p
}
