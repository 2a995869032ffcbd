package paper

import (
	"errors"
	"testing"

	"github.com/louisbranch/commercialpaper/internal/cash"
	"github.com/louisbranch/commercialpaper/internal/ledger"
	"github.com/louisbranch/commercialpaper/internal/ledgertest"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
)

func testIssuance() Issuance {
	return Issuance{Party: ledgertest.MegaCorp, Reference: []byte("programme-1")}
}

func testRecord(t *testing.T, owner ledger.Party) Record {
	t.Helper()
	return Record{
		Issuance:   testIssuance(),
		Owner:      owner,
		FaceValue:  ledgertest.MustAmount(t, "1000.00", "USD", ledgertest.MegaCorp),
		MaturityAt: ledgertest.Days(30),
	}
}

func paymentTo(owner ledger.Party, cents int64) cash.State {
	return cash.State{
		Amount: ledger.Amount{Quantity: cents, Currency: "USD", Issuer: ledgertest.Bank},
		Owner:  owner,
	}
}

func assertCode(t *testing.T, err error, want apperrors.Code) *apperrors.Error {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not a domain error", err)
	}
	if appErr.Code != want {
		t.Fatalf("error code = %s, want %s", appErr.Code, want)
	}
	return appErr
}

func assertViolation(t *testing.T, err error, rule string) {
	t.Helper()
	appErr := assertCode(t, err, apperrors.CodeRuleViolation)
	if appErr.Metadata["Rule"] != rule {
		t.Fatalf("violated rule = %q, want %q", appErr.Metadata["Rule"], rule)
	}
}

// issueProposal builds an accepted issuance: face value 1000.00 USD,
// maturing thirty days after the window closes.
func issueProposal(t *testing.T) ledger.Proposal {
	t.Helper()
	b := BuildIssue(
		testIssuance(),
		ledgertest.MustAmount(t, "1000.00", "USD", ledgertest.MegaCorp),
		ledgertest.Days(30),
		ledgertest.Coordinator,
	)
	b.SetWindow(ledger.WindowUntil(ledgertest.T0))
	return b.Proposal()
}

func TestVerifyIssueAccepted(t *testing.T) {
	p := issueProposal(t)
	if err := (Contract{}).Verify(p); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(p.Inputs) != 0 || len(p.Outputs) != 1 {
		t.Fatalf("proposal shape = %d inputs, %d outputs, want 0 and 1", len(p.Inputs), len(p.Outputs))
	}
	record := p.Outputs[0].(Record)
	if record.Owner != ledgertest.MegaCorp {
		t.Fatalf("initial owner = %s, want the issuer", record.Owner.Name)
	}
}

func TestVerifyIssueRuleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, p *ledger.Proposal)
		rule   string
	}{
		{
			name: "not signed by the issuer",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Commands[0].Signers = []ledger.PublicKey{ledgertest.Alice.Key}
			},
			rule: "the paper is issued by a command signer",
		},
		{
			name: "zero face value",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				record := p.Outputs[0].(Record)
				record.FaceValue = ledger.Amount{Currency: "USD", Issuer: ledgertest.MegaCorp}
				p.Outputs[0] = record
			},
			rule: "the face value must be positive",
		},
		{
			name: "window closes exactly at maturity",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Window = ledger.WindowUntil(ledgertest.Days(30))
			},
			rule: "the maturity date is not in the past",
		},
		{
			name: "window closes after maturity",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Window = ledger.WindowUntil(ledgertest.Days(45))
			},
			rule: "the maturity date is not in the past",
		},
		{
			name: "reissues the same paper",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Inputs = append(p.Inputs, ledger.StateAndRef{
					Ref:   ledgertest.Ref("existing-issue", 0),
					State: testRecord(t, ledgertest.MegaCorp),
				})
			},
			rule: "can't reissue an existing state",
		},
		{
			name: "consumes paper from another lineage",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				other := testRecord(t, ledgertest.MegaCorp)
				other.Issuance.Reference = []byte("programme-2")
				p.Inputs = append(p.Inputs, ledger.StateAndRef{
					Ref:   ledgertest.Ref("other-issue", 0),
					State: other,
				})
			},
			rule: "can't reissue an existing state",
		},
		{
			name: "issues two papers at once",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				second := testRecord(t, ledgertest.MegaCorp)
				second.Issuance.Reference = []byte("programme-2")
				p.Outputs = append(p.Outputs, second)
			},
			rule: "there is exactly one output paper",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := issueProposal(t)
			tc.mutate(t, &p)
			assertViolation(t, (Contract{}).Verify(p), tc.rule)
		})
	}
}

func TestVerifyIssueRequiresWindowUpperBound(t *testing.T) {
	t.Run("no window", func(t *testing.T) {
		p := issueProposal(t)
		p.Window = nil
		appErr := assertCode(t, (Contract{}).Verify(p), apperrors.CodeWindowMissing)
		if appErr.Metadata["Intent"] != "issue" {
			t.Fatalf("intent metadata = %q, want %q", appErr.Metadata["Intent"], "issue")
		}
	})

	t.Run("lower bound only", func(t *testing.T) {
		p := issueProposal(t)
		p.Window = ledger.WindowFrom(ledgertest.T0)
		assertCode(t, (Contract{}).Verify(p), apperrors.CodeWindowMissing)
	})
}

// moveProposal builds an accepted transfer of alice's paper to bob.
func moveProposal(t *testing.T) ledger.Proposal {
	t.Helper()
	b := ledger.NewBuilder(ledgertest.Coordinator)
	current := ledger.StateAndRef{
		Ref:   ledgertest.Ref("issue-tx", 0),
		State: testRecord(t, ledgertest.Alice),
	}
	if err := BuildMove(b, current, ledgertest.Bob); err != nil {
		t.Fatalf("build move: %v", err)
	}
	return b.Proposal()
}

func TestVerifyMoveAccepted(t *testing.T) {
	p := moveProposal(t)
	if err := (Contract{}).Verify(p); err != nil {
		t.Fatalf("verify: %v", err)
	}

	input := p.Inputs[0].State.(Record)
	output := p.Outputs[0].(Record)
	if output.Owner != ledgertest.Bob {
		t.Fatalf("new owner = %s, want bob", output.Owner.Name)
	}
	if !output.FaceValue.Equal(input.FaceValue) || !output.MaturityAt.Equal(input.MaturityAt) {
		t.Fatal("move changed fields other than the owner")
	}
}

func TestVerifyMoveRuleViolations(t *testing.T) {
	carol := ledger.Party{Name: "carol", Key: "carol-key"}

	tests := []struct {
		name   string
		mutate func(t *testing.T, p *ledger.Proposal)
		rule   string
	}{
		{
			name: "not signed by the current owner",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Commands[0].Signers = []ledger.PublicKey{ledgertest.Bob.Key}
			},
			rule: "the transaction is signed by the owner of the paper",
		},
		{
			name: "paper disappears without replacement",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = nil
			},
			rule: "the state is propagated",
		},
		{
			name: "paper splits into two outputs",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = append(p.Outputs, testRecord(t, carol))
			},
			rule: "the state is propagated",
		},
		{
			name: "no input paper",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Inputs = nil
			},
			rule: "there is exactly one input paper",
		},
		{
			name: "two input papers",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Inputs = append(p.Inputs, ledger.StateAndRef{
					Ref:   ledgertest.Ref("issue-tx-2", 0),
					State: testRecord(t, ledgertest.Alice),
				})
			},
			rule: "there is exactly one input paper",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := moveProposal(t)
			tc.mutate(t, &p)
			assertViolation(t, (Contract{}).Verify(p), tc.rule)
		})
	}
}

// redeemProposal builds an accepted redemption: bob's matured paper is
// destroyed against an exact face value payment, with the window opening
// right at maturity.
func redeemProposal(t *testing.T) ledger.Proposal {
	t.Helper()
	b := ledger.NewBuilder(ledgertest.Coordinator)
	b.AddInput(ledger.StateAndRef{
		Ref:   ledgertest.Ref("move-tx", 0),
		State: testRecord(t, ledgertest.Bob),
	})
	b.AddOutput(paymentTo(ledgertest.Bob, 100000))
	b.AddCommand(IntentRedeem, ledgertest.Bob.Key)
	b.SetWindow(ledger.WindowFrom(ledgertest.Days(30)))
	return b.Proposal()
}

func TestVerifyRedeemAccepted(t *testing.T) {
	t.Run("window opens exactly at maturity", func(t *testing.T) {
		if err := (Contract{}).Verify(redeemProposal(t)); err != nil {
			t.Fatalf("verify: %v", err)
		}
	})

	t.Run("window opens after maturity", func(t *testing.T) {
		p := redeemProposal(t)
		p.Window = ledger.WindowFrom(ledgertest.Days(45))
		if err := (Contract{}).Verify(p); err != nil {
			t.Fatalf("verify: %v", err)
		}
	})

	t.Run("payment split across notes", func(t *testing.T) {
		p := redeemProposal(t)
		p.Outputs = []ledger.State{
			paymentTo(ledgertest.Bob, 60000),
			paymentTo(ledgertest.Bob, 40000),
		}
		if err := (Contract{}).Verify(p); err != nil {
			t.Fatalf("verify: %v", err)
		}
	})

	t.Run("payment issuer is disregarded", func(t *testing.T) {
		p := redeemProposal(t)
		note := paymentTo(ledgertest.Bob, 100000)
		note.Amount.Issuer = ledgertest.MegaCorp
		p.Outputs = []ledger.State{note}
		if err := (Contract{}).Verify(p); err != nil {
			t.Fatalf("verify: %v", err)
		}
	})

	t.Run("a cash command alongside is not ambiguous", func(t *testing.T) {
		p := redeemProposal(t)
		p.Commands = append(p.Commands, ledger.Command{
			Data:    cash.IntentSpend,
			Signers: []ledger.PublicKey{ledgertest.MegaCorp.Key},
		})
		if err := (Contract{}).Verify(p); err != nil {
			t.Fatalf("verify: %v", err)
		}
	})
}

func TestVerifyRedeemRuleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, p *ledger.Proposal)
		rule   string
	}{
		{
			name: "paper has not matured",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Window = ledger.WindowFrom(ledgertest.Days(10))
			},
			rule: "the paper must have matured",
		},
		{
			name: "payment one cent short",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = []ledger.State{paymentTo(ledgertest.Bob, 99999)}
			},
			rule: "the received amount equals the face value",
		},
		{
			name: "payment overshoots",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = []ledger.State{paymentTo(ledgertest.Bob, 100001)}
			},
			rule: "the received amount equals the face value",
		},
		{
			name: "payment goes to someone else",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = []ledger.State{paymentTo(ledgertest.Alice, 100000)}
			},
			rule: "the received amount equals the face value",
		},
		{
			name: "payment mixes currencies",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				euros := paymentTo(ledgertest.Bob, 50000)
				euros.Amount.Currency = "EUR"
				p.Outputs = []ledger.State{paymentTo(ledgertest.Bob, 50000), euros}
			},
			rule: "the received amount equals the face value",
		},
		{
			name: "no payment at all",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = nil
			},
			rule: "the received amount equals the face value",
		},
		{
			name: "paper survives redemption",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Outputs = append(p.Outputs, testRecord(t, ledgertest.Bob))
			},
			rule: "the paper must be destroyed",
		},
		{
			name: "not signed by the owner",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Commands[0].Signers = []ledger.PublicKey{ledgertest.Alice.Key}
			},
			rule: "the transaction is signed by the owner of the paper",
		},
		{
			name: "two input papers",
			mutate: func(t *testing.T, p *ledger.Proposal) {
				p.Inputs = append(p.Inputs, ledger.StateAndRef{
					Ref:   ledgertest.Ref("move-tx-2", 0),
					State: testRecord(t, ledgertest.Bob),
				})
			},
			rule: "there is exactly one input paper",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := redeemProposal(t)
			tc.mutate(t, &p)
			assertViolation(t, (Contract{}).Verify(p), tc.rule)
		})
	}
}

func TestVerifyRedeemRequiresWindowLowerBound(t *testing.T) {
	t.Run("no window", func(t *testing.T) {
		p := redeemProposal(t)
		p.Window = nil
		appErr := assertCode(t, (Contract{}).Verify(p), apperrors.CodeWindowMissing)
		if appErr.Metadata["Intent"] != "redeem" {
			t.Fatalf("intent metadata = %q, want %q", appErr.Metadata["Intent"], "redeem")
		}
	})

	t.Run("upper bound only", func(t *testing.T) {
		p := redeemProposal(t)
		p.Window = ledger.WindowUntil(ledgertest.Days(45))
		assertCode(t, (Contract{}).Verify(p), apperrors.CodeWindowMissing)
	})
}

func TestVerifyRejectsAmbiguousIntent(t *testing.T) {
	t.Run("no intent", func(t *testing.T) {
		p := issueProposal(t)
		p.Commands = nil
		appErr := assertCode(t, (Contract{}).Verify(p), apperrors.CodeIntentAmbiguous)
		if appErr.Metadata["Count"] != "0" {
			t.Fatalf("count metadata = %q, want %q", appErr.Metadata["Count"], "0")
		}
	})

	t.Run("two intents", func(t *testing.T) {
		p := issueProposal(t)
		p.Commands = append(p.Commands, ledger.Command{
			Data:    IntentMove,
			Signers: []ledger.PublicKey{ledgertest.MegaCorp.Key},
		})
		appErr := assertCode(t, (Contract{}).Verify(p), apperrors.CodeIntentAmbiguous)
		if appErr.Metadata["Count"] != "2" {
			t.Fatalf("count metadata = %q, want %q", appErr.Metadata["Count"], "2")
		}
	})
}

func TestVerifyRejectsUnrecognizedIntent(t *testing.T) {
	p := issueProposal(t)
	p.Commands[0].Data = Intent("shred")

	appErr := assertCode(t, (Contract{}).Verify(p), apperrors.CodeIntentUnrecognized)
	if appErr.Metadata["Intent"] != "shred" {
		t.Fatalf("intent metadata = %q, want %q", appErr.Metadata["Intent"], "shred")
	}
}

func TestVerifyIsRepeatable(t *testing.T) {
	accept := redeemProposal(t)
	reject := redeemProposal(t)
	reject.Window = ledger.WindowFrom(ledgertest.Days(10))

	for i := 0; i < 3; i++ {
		if err := (Contract{}).Verify(accept); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
		assertViolation(t, (Contract{}).Verify(reject), "the paper must have matured")
	}
}
