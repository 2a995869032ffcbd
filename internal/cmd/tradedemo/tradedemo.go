// Package tradedemo parses demo command flags and walks the full
// commercial paper lifecycle against a SQLite-backed vault: cash is
// seeded, paper is issued, sold and redeemed, and the rejections a
// careless trader would hit are shown along the way.
package tradedemo

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/louisbranch/commercialpaper/internal/cash"
	"github.com/louisbranch/commercialpaper/internal/ledger"
	"github.com/louisbranch/commercialpaper/internal/paper"
	entrypoint "github.com/louisbranch/commercialpaper/internal/platform/cmd"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
	errori18n "github.com/louisbranch/commercialpaper/internal/platform/errors/i18n"
	i18ncatalog "github.com/louisbranch/commercialpaper/internal/platform/i18n/catalog"
	"github.com/louisbranch/commercialpaper/internal/platform/timeouts"
	"github.com/louisbranch/commercialpaper/internal/vault"
	vaultsqlite "github.com/louisbranch/commercialpaper/internal/vault/sqlite"
)

// Config holds tradedemo command configuration.
type Config struct {
	DBPath       string `env:"COMMERCIALPAPER_DEMO_DB_PATH" envDefault:"data/vault.db"`
	Locale       string `env:"COMMERCIALPAPER_DEMO_LOCALE" envDefault:"en-US"`
	FaceValue    string `env:"COMMERCIALPAPER_DEMO_FACE_VALUE" envDefault:"1000.00"`
	Currency     string `env:"COMMERCIALPAPER_DEMO_CURRENCY" envDefault:"USD"`
	MaturityDays int    `env:"COMMERCIALPAPER_DEMO_MATURITY_DAYS" envDefault:"90"`
	SeedValue    string `env:"COMMERCIALPAPER_DEMO_SEED_VALUE" envDefault:"2000.00"`
	TopUpValue   string `env:"COMMERCIALPAPER_DEMO_TOPUP_VALUE" envDefault:"1500.00"`
}

// Validate implements config.Validator over the combined env and flag
// values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db path is required")
	}
	if c.MaturityDays <= 0 {
		return fmt.Errorf("maturity horizon must be positive, got %d", c.MaturityDays)
	}
	for _, value := range []string{c.FaceValue, c.SeedValue, c.TopUpValue} {
		if _, err := ledger.ParseAmount(value, c.Currency, ledger.Party{}); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The vault SQLite database path")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for demo output")
	fs.StringVar(&cfg.FaceValue, "face-value", cfg.FaceValue, "Face value of the issued paper")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "Currency of the issued paper")
	fs.IntVar(&cfg.MaturityDays, "maturity-days", cfg.MaturityDays, "Days until the paper matures")
	fs.StringVar(&cfg.SeedValue, "seed-value", cfg.SeedValue, "Cash issued to the investor up front")
	fs.StringVar(&cfg.TopUpValue, "topup-value", cfg.TopUpValue, "Cash issued to the issuer before redemption")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run walks the lifecycle with telemetry configured, writing the
// narration to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTradeDemo, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Walkthrough)
		defer cancel()
		return Walk(ctx, cfg, os.Stdout)
	})
}

// Fixed identities the walkthrough trades between.
var (
	bank     = ledger.Party{Name: "bank", Key: "bank-key"}
	megaCorp = ledger.Party{Name: "megacorp", Key: "megacorp-key"}
	alice    = ledger.Party{Name: "alice", Key: "alice-key"}
	runner   = ledger.Party{Name: "coordinator", Key: "coordinator-key"}
)

// Walk runs the lifecycle against a fresh or existing vault at
// cfg.DBPath, narrating each step to out.
func Walk(ctx context.Context, cfg Config, out io.Writer) error {
	ctx, span := otel.Tracer("commercialpaper/tradedemo").Start(ctx, "demo.walk")
	defer span.End()

	if out == nil {
		out = io.Discard
	}

	store, err := vaultsqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	registry := ledger.NewRegistry()
	if err := registry.Register(paper.ContractID, paper.Contract{}); err != nil {
		return err
	}
	if err := registry.Register(cash.ContractID, cash.Contract{}); err != nil {
		return err
	}

	d := &demo{
		service: vault.NewService(registry, store),
		locale:  cfg.Locale,
		out:     out,
		start:   time.Now().UTC(),
	}
	return d.walk(ctx, cfg)
}

// demo threads the vault service and narration target through the
// lifecycle steps.
type demo struct {
	service *vault.Service
	locale  string
	out     io.Writer
	start   time.Time
}

func (d *demo) walk(ctx context.Context, cfg Config) error {
	d.say("demo.title", "")

	maturity := d.start.AddDate(0, 0, cfg.MaturityDays)

	seed, err := ledger.ParseAmount(cfg.SeedValue, cfg.Currency, bank)
	if err != nil {
		return err
	}
	if err := d.issueCash(ctx, seed, alice, "demo.cash.seeded"); err != nil {
		return err
	}

	faceValue, err := ledger.ParseAmount(cfg.FaceValue, cfg.Currency, megaCorp)
	if err != nil {
		return err
	}
	if err := d.issuePaper(ctx, faceValue, maturity); err != nil {
		return err
	}

	if err := d.movePaper(ctx, alice); err != nil {
		return err
	}

	// The issuer holds no cash yet, so settlement cannot be funded.
	_, err = d.redeemPaper(ctx, maturity)
	if err := d.expectRejection(err, apperrors.CodeInsufficientFunds, "demo.rejection.funds"); err != nil {
		return err
	}

	topUp, err := ledger.ParseAmount(cfg.TopUpValue, cfg.Currency, bank)
	if err != nil {
		return err
	}
	if err := d.issueCash(ctx, topUp, megaCorp, "demo.cash.topup"); err != nil {
		return err
	}

	// Settling before the paper matures violates the redemption rules.
	_, err = d.redeemPaper(ctx, d.start)
	if err := d.expectRejection(err, apperrors.CodeRuleViolation, "demo.rejection.expected"); err != nil {
		return err
	}

	if _, err := d.redeemPaper(ctx, maturity); err != nil {
		return err
	}

	return d.listHoldings(ctx)
}

// issueCash mints notes from the bank to the given owner.
func (d *demo) issueCash(ctx context.Context, amount ledger.Amount, owner ledger.Party, msgKey string) error {
	note := cash.State{Amount: amount, Owner: owner}
	b := ledger.NewBuilder(runner)
	b.AddOutput(note)
	b.AddCommand(cash.IntentIssue, bank.Key)

	if _, err := d.apply(ctx, b.Proposal()); err != nil {
		return err
	}
	d.say(msgKey, note.String())
	return nil
}

// issuePaper places a fresh paper programme on the ledger, owned by its
// issuer. Each run mints a distinct issuance reference, so reruns
// against the same vault do not collide.
func (d *demo) issuePaper(ctx context.Context, faceValue ledger.Amount, maturity time.Time) error {
	reference := uuid.New()
	b := paper.BuildIssue(
		paper.Issuance{Party: megaCorp, Reference: reference[:]},
		faceValue,
		maturity,
		runner,
	)
	b.SetWindow(ledger.WindowUntil(d.start))

	if _, err := d.apply(ctx, b.Proposal()); err != nil {
		return err
	}
	record := b.Proposal().Outputs[0].(paper.Record)
	d.say("demo.paper.issued", record.String())
	return nil
}

// movePaper sells the paper on the books to a new owner.
func (d *demo) movePaper(ctx context.Context, newOwner ledger.Party) error {
	holding, err := d.paperOnBooks(ctx)
	if err != nil {
		return err
	}

	b := ledger.NewBuilder(runner)
	if err := paper.BuildMove(b, holding, newOwner); err != nil {
		return err
	}
	if _, err := d.apply(ctx, b.Proposal()); err != nil {
		return err
	}
	d.say("demo.paper.moved", b.Proposal().Outputs[0].(paper.Record).String())
	return nil
}

// redeemPaper extinguishes the paper on the books against funds from
// the issuer's wallet, declaring a settlement window opening at from.
// On success it narrates the redemption.
func (d *demo) redeemPaper(ctx context.Context, from time.Time) (ledger.TxHash, error) {
	holding, err := d.paperOnBooks(ctx)
	if err != nil {
		return ledger.TxHash{}, err
	}
	wallet, err := d.walletOf(ctx, megaCorp)
	if err != nil {
		return ledger.TxHash{}, err
	}

	b := ledger.NewBuilder(runner)
	if err := paper.BuildRedeem(b, holding, wallet); err != nil {
		return ledger.TxHash{}, err
	}
	b.SetWindow(ledger.WindowFrom(from))

	hash, err := d.apply(ctx, b.Proposal())
	if err != nil {
		return ledger.TxHash{}, err
	}
	d.say("demo.paper.redeemed", holding.State.(paper.Record).String())
	return hash, nil
}

// listHoldings narrates the unconsumed records left on the books.
func (d *demo) listHoldings(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()

	records, err := d.service.Query(ctx, vault.Query{})
	if err != nil {
		return err
	}
	d.say("demo.vault.unconsumed", "")
	for _, record := range records {
		amount := ledger.Amount{Quantity: record.Quantity, Currency: record.Currency}
		fmt.Fprintf(d.out, "  %-12s %14s  %s\n", record.Owner, amount, record.Contract)
	}
	return nil
}

func (d *demo) apply(ctx context.Context, p ledger.Proposal) (ledger.TxHash, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()
	return d.service.Apply(ctx, p)
}

// paperOnBooks resolves the single unconsumed paper record the
// walkthrough trades.
func (d *demo) paperOnBooks(ctx context.Context) (ledger.StateAndRef, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()

	records, err := d.service.Query(ctx, vault.Query{
		Filter: fmt.Sprintf("contract = %q", paper.ContractID),
		Limit:  1,
	})
	if err != nil {
		return ledger.StateAndRef{}, err
	}
	if len(records) == 0 {
		return ledger.StateAndRef{}, errors.New("no unconsumed paper on the books")
	}

	var record paper.Record
	if err := json.Unmarshal(records[0].StateJSON, &record); err != nil {
		return ledger.StateAndRef{}, fmt.Errorf("decode paper record %s: %w", records[0].Ref, err)
	}
	return ledger.StateAndRef{Ref: records[0].Ref, State: record}, nil
}

// walletOf rebuilds the owner's wallet from the unconsumed notes on the
// books. Rebuilding per attempt keeps the wallet honest after proposals
// the contracts reject.
func (d *demo) walletOf(ctx context.Context, owner ledger.Party) (*cash.Wallet, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()

	records, err := d.service.Query(ctx, vault.Query{
		Filter: fmt.Sprintf("contract = %q AND owner_key = %q", cash.ContractID, string(owner.Key)),
	})
	if err != nil {
		return nil, err
	}

	wallet := cash.NewWallet(owner)
	for _, record := range records {
		var note cash.State
		if err := json.Unmarshal(record.StateJSON, &note); err != nil {
			return nil, fmt.Errorf("decode cash note %s: %w", record.Ref, err)
		}
		if err := wallet.Add(ledger.StateAndRef{Ref: record.Ref, State: note}); err != nil {
			return nil, err
		}
	}
	return wallet, nil
}

// expectRejection narrates a rejection the walkthrough deliberately
// provokes. Any other outcome, including success, fails the run.
func (d *demo) expectRejection(err error, code apperrors.Code, msgKey string) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Code != code {
		return fmt.Errorf("expected a %s rejection, got: %v", code, err)
	}
	reason := errori18n.GetCatalog(d.locale).Format(string(appErr.Code), appErr.Metadata)
	d.say(msgKey, reason)
	return nil
}

// say prints one narration line, resolving the message key in the
// configured locale with base-locale fallback.
func (d *demo) say(msgKey, detail string) {
	text, ok := i18ncatalog.Default().Message(d.locale, msgKey)
	if !ok {
		text = msgKey
	}
	if detail == "" {
		fmt.Fprintln(d.out, text)
		return
	}
	fmt.Fprintf(d.out, "%s: %s\n", text, detail)
}
