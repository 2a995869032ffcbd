// Package vaultq parses query command flags and lists the unconsumed
// records a vault database holds.
package vaultq

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/louisbranch/commercialpaper/internal/ledger"
	entrypoint "github.com/louisbranch/commercialpaper/internal/platform/cmd"
	apperrors "github.com/louisbranch/commercialpaper/internal/platform/errors"
	errori18n "github.com/louisbranch/commercialpaper/internal/platform/errors/i18n"
	"github.com/louisbranch/commercialpaper/internal/platform/timeouts"
	"github.com/louisbranch/commercialpaper/internal/vault"
	vaultsqlite "github.com/louisbranch/commercialpaper/internal/vault/sqlite"
)

// Config holds vaultq command configuration.
type Config struct {
	DBPath string `env:"COMMERCIALPAPER_VAULT_DB_PATH" envDefault:"data/vault.db"`
	Filter string `env:"COMMERCIALPAPER_VAULT_FILTER"`
	Limit  int    `env:"COMMERCIALPAPER_VAULT_LIMIT" envDefault:"50"`
	Locale string `env:"COMMERCIALPAPER_VAULT_LOCALE" envDefault:"en-US"`
}

// Validate implements config.Validator over the combined env and flag
// values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db path is required")
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
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
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "AIP-160 filter over owner, owner_key, contract, currency, quantity and matures_at")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "Maximum records to list (0 for no cap)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for error messages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the query with telemetry configured, writing the listing
// to stdout.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceVaultQ, func(ctx context.Context) error {
		return Query(ctx, cfg, os.Stdout)
	})
}

// Query lists the unconsumed records matching cfg.Filter, oldest first.
// Domain rejections such as an invalid filter are rendered in the
// configured locale.
func Query(ctx context.Context, cfg Config, out io.Writer) error {
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

	ctx, cancel := context.WithTimeout(ctx, timeouts.Storage)
	defer cancel()

	records, err := store.QueryRecords(ctx, vault.Query{Filter: cfg.Filter, Limit: cfg.Limit})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return errors.New(errori18n.GetCatalog(cfg.Locale).Format(string(appErr.Code), appErr.Metadata))
		}
		return err
	}

	fmt.Fprintf(out, "%-16s %-12s %14s  %-24s %s\n", "REF", "OWNER", "AMOUNT", "CONTRACT", "MATURES")
	for _, record := range records {
		fmt.Fprintf(out, "%-16s %-12s %14s  %-24s %s\n",
			shortRef(record.Ref),
			record.Owner,
			ledgerAmount(record),
			record.Contract,
			maturityColumn(record),
		)
	}
	return nil
}

func shortRef(ref ledger.StateRef) string {
	hash := ref.TxHash.String()
	return fmt.Sprintf("%s[%d]", hash[:12], ref.Index)
}

func ledgerAmount(record vault.Record) string {
	return ledger.Amount{Quantity: record.Quantity, Currency: record.Currency}.String()
}

func maturityColumn(record vault.Record) string {
	if record.MaturesAt == nil {
		return "-"
	}
	return record.MaturesAt.UTC().Format("2006-01-02")
}
