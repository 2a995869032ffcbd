package filter

import (
	"strings"
	"testing"
)

func TestParseRecordFilterEmpty(t *testing.T) {
	cond, err := ParseRecordFilter("   ")
	if err != nil {
		t.Fatalf("parse empty filter: %v", err)
	}
	if cond.Clause != "" || len(cond.Params) != 0 {
		t.Fatalf("expected empty condition, got %q with %v", cond.Clause, cond.Params)
	}
}

func TestParseRecordFilterTranslations(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		clause string
		params []any
	}{
		{
			name:   "owner equality",
			filter: `owner = "alice"`,
			clause: "owner_name = ?",
			params: []any{"alice"},
		},
		{
			name:   "owner key equality",
			filter: `owner_key = "alice-key"`,
			clause: "owner_key = ?",
			params: []any{"alice-key"},
		},
		{
			name:   "contract equality",
			filter: `contract = "commercialpaper/paper"`,
			clause: "contract = ?",
			params: []any{"commercialpaper/paper"},
		},
		{
			name:   "quantity threshold",
			filter: `quantity >= 100000`,
			clause: "quantity >= ?",
			params: []any{int64(100000)},
		},
		{
			name:   "currency and owner",
			filter: `currency = "USD" AND owner = "bob"`,
			clause: "(currency = ? AND owner_name = ?)",
			params: []any{"USD", "bob"},
		},
		{
			name:   "owner or owner",
			filter: `owner = "alice" OR owner = "bob"`,
			clause: "(owner_name = ? OR owner_name = ?)",
			params: []any{"alice", "bob"},
		},
		{
			name:   "maturity cutoff",
			filter: `matures_at <= timestamp("2026-06-01T00:00:00Z")`,
			clause: "matures_at <= ?",
			params: []any{"2026-06-01T00:00:00Z"},
		},
		{
			name:   "nested connectives",
			filter: `contract = "commercialpaper/cash" AND (owner = "alice" OR owner = "bob")`,
			clause: "(contract = ? AND (owner_name = ? OR owner_name = ?))",
			params: []any{"commercialpaper/cash", "alice", "bob"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cond, err := ParseRecordFilter(tc.filter)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.filter, err)
			}
			if cond.Clause != tc.clause {
				t.Fatalf("clause = %q, want %q", cond.Clause, tc.clause)
			}
			if len(cond.Params) != len(tc.params) {
				t.Fatalf("params = %v, want %v", cond.Params, tc.params)
			}
			for i := range tc.params {
				if cond.Params[i] != tc.params[i] {
					t.Fatalf("param %d = %v (%T), want %v (%T)", i, cond.Params[i], cond.Params[i], tc.params[i], tc.params[i])
				}
			}
		})
	}
}

func TestParseRecordFilterRejectsUnknownField(t *testing.T) {
	_, err := ParseRecordFilter(`shoe_size = 42`)
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestParseRecordFilterRejectsBadSyntax(t *testing.T) {
	_, err := ParseRecordFilter(`owner = `)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !strings.Contains(err.Error(), "parse filter") {
		t.Fatalf("error %v does not mention filter parsing", err)
	}
}

func TestParseRecordFilterRejectsBadTimestamp(t *testing.T) {
	_, err := ParseRecordFilter(`matures_at >= timestamp("yesterday")`)
	if err == nil {
		t.Fatal("expected timestamp format error")
	}
}
