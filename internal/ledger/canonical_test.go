package ledger

import (
	"strings"
	"testing"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{
		"zeta":  1,
		"alpha": map[string]any{"y": true, "x": "value"},
	})
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	want := `{"alpha":{"x":"value","y":true},"zeta":1}`
	if string(got) != want {
		t.Fatalf("canonical = %s, want %s", got, want)
	}
}

func TestCanonicalJSONDoesNotEscapeHTML(t *testing.T) {
	got, err := CanonicalJSON(map[string]any{"note": "<paid & settled>"})
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	if !strings.Contains(string(got), "<paid & settled>") {
		t.Fatalf("html characters were escaped: %s", got)
	}
}

func TestCanonicalHashIsStable(t *testing.T) {
	value := map[string]any{
		"b": []any{1, 2, 3},
		"a": "x",
	}
	first, err := CanonicalHash(value)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := CanonicalHash(map[string]any{
		"a": "x",
		"b": []any{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("hashes differ: %s vs %s", first, second)
	}
	if first == (TxHash{}) {
		t.Fatal("hash should not be zero")
	}
}

func TestCanonicalHashDistinguishesValues(t *testing.T) {
	first, err := CanonicalHash(map[string]any{"k": 1})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := CanonicalHash(map[string]any{"k": 2})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("different values must not collide")
	}
}

func TestCanonicalJSONRejectsUnencodable(t *testing.T) {
	if _, err := CanonicalJSON(map[string]any{"fn": func() {}}); err == nil {
		t.Fatal("expected error for unencodable value")
	}
}
