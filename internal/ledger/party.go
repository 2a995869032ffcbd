package ledger

// PublicKey identifies a signing key. Values are opaque to the engine;
// they are only ever compared for equality.
type PublicKey string

// Party pairs a display name with the key that signs on its behalf.
type Party struct {
	Name string
	Key  PublicKey
}

// AnonymousParty stands in where ownership must be erased, such as when
// deriving grouping keys.
var AnonymousParty = Party{Name: "anonymous"}
