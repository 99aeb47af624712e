// Package cmd implements the CLI application to manage a personal ledger.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/castrobruno/finbook"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package calls Register() to declare the subcommands, and Execute() on
// the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&accountsCmd{}, "ledger")
	c.Register(&txCmd{}, "ledger")
	c.Register(&balanceCmd{}, "ledger")

	c.Register(&scheduleCmd{}, "loans")

	c.Register(&billsCmd{}, "bills")
	c.Register(&payCmd{}, "bills")

	c.Register(&importCmd{}, "statements")
	c.Register(&commitCmd{}, "statements")

	c.Register(&exportCmd{}, "storage")
}

// Config holds the application settings, loaded from the environment and an
// optional .env file in the working directory.
type Config struct {
	File     string
	Currency string
	Debug    bool
}

// LoadConfig reads FINBOOK_* variables, loading .env first if present.
func LoadConfig() Config {
	_ = godotenv.Load()
	c := Config{
		File:     os.Getenv("FINBOOK_FILE"),
		Currency: os.Getenv("FINBOOK_CURRENCY"),
		Debug:    os.Getenv("FINBOOK_DEBUG") == "true",
	}
	if c.File == "" {
		c.File = "finbook.json"
	}
	if c.Currency != "" {
		finbook.SetCurrency(c.Currency)
	}
	return c
}

// Logger builds the application logger. Debug mode lowers the level and
// writes human-readable console output.
func Logger(c Config) zerolog.Logger {
	if !c.Debug {
		return zerolog.Nop()
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// DecodeLedger loads the ledger from the configured file. A missing file
// yields a fresh empty ledger.
func DecodeLedger(c Config) (*finbook.Ledger, error) {
	f, err := os.Open(c.File)
	if errors.Is(err, fs.ErrNotExist) {
		return finbook.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger file %q: %w", c.File, err)
	}
	defer f.Close()

	l, err := finbook.Import(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger file %q: %w", c.File, err)
	}
	return l, nil
}

// EncodeLedger writes the ledger back to the configured file.
func EncodeLedger(c Config, l *finbook.Ledger) error {
	f, err := os.Create(c.File)
	if err != nil {
		return fmt.Errorf("cannot write ledger file %q: %w", c.File, err)
	}
	if err := finbook.Export(f, l); err != nil {
		f.Close()
		return fmt.Errorf("cannot write ledger file %q: %w", c.File, err)
	}
	return f.Close()
}

// mdBuilder accumulates markdown output for printMarkdown.
type mdBuilder struct {
	strings.Builder
}

func (b *mdBuilder) Printf(format string, args ...any) {
	fmt.Fprintf(&b.Builder, format, args...)
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
