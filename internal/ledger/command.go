package ledger

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

// Command attaches an intent value to the keys that must have signed for
// it.
type Command struct {
	Data    any
	Signers []PublicKey
}

// SignedBy reports whether key is among the command's signers.
func (c Command) SignedBy(key PublicKey) bool {
	for _, signer := range c.Signers {
		if signer == key {
			return true
		}
	}
	return false
}

// ResolvedCommand is a Command whose Data has been narrowed to a concrete
// intent type.
type ResolvedCommand[T any] struct {
	Value   T
	Signers []PublicKey
}

// SignedBy reports whether key is among the command's signers.
func (c ResolvedCommand[T]) SignedBy(key PublicKey) bool {
	for _, signer := range c.Signers {
		if signer == key {
			return true
		}
	}
	return false
}

// SingleCommand returns the one command in the proposal whose Data is of
// type T. Zero matches and multiple matches are both ambiguous: the
// contract cannot tell which transition was intended.
func SingleCommand[T any](commands []Command) (ResolvedCommand[T], error) {
	var (
		resolved ResolvedCommand[T]
		count    int
	)
	for _, cmd := range commands {
		value, ok := cmd.Data.(T)
		if !ok {
			continue
		}
		count++
		resolved = ResolvedCommand[T]{Value: value, Signers: cmd.Signers}
	}
	if count != 1 {
		return ResolvedCommand[T]{}, apperrors.WithMetadata(
			apperrors.CodeIntentAmbiguous,
			fmt.Sprintf("expected exactly one %T command, found %d", resolved.Value, count),
			map[string]string{"Count": strconv.Itoa(count)},
		)
	}
	return resolved, nil
}
