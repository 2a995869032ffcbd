package ledger

// Group is the slice of a proposal that shares one lineage key: the
// inputs being consumed and the outputs being created for that key.
type Group[S State, K comparable] struct {
	Key     K
	Inputs  []S
	Outputs []S
}

// GroupStates partitions a proposal's inputs and outputs of type S by the
// key the project function derives. The partition is total for states of
// type S; states of other types are ignored. Groups are ordered by first
// appearance, scanning inputs before outputs, so grouping the same
// proposal twice yields the same result.
func GroupStates[S State, K comparable](p Proposal, project func(S) K) []Group[S, K] {
	index := make(map[K]int)
	var groups []Group[S, K]

	groupAt := func(key K) int {
		if i, ok := index[key]; ok {
			return i
		}
		index[key] = len(groups)
		groups = append(groups, Group[S, K]{Key: key})
		return len(groups) - 1
	}

	for _, in := range p.Inputs {
		state, ok := in.State.(S)
		if !ok {
			continue
		}
		i := groupAt(project(state))
		groups[i].Inputs = append(groups[i].Inputs, state)
	}
	for _, out := range p.Outputs {
		state, ok := out.(S)
		if !ok {
			continue
		}
		i := groupAt(project(state))
		groups[i].Outputs = append(groups[i].Outputs, state)
	}
	return groups
}
