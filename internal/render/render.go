// Package render prints command results as terminal tables, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fintrack/fintrack/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Renderer writes results to w in one output format.
type Renderer struct {
	w        io.Writer
	format   string
	currency string
}

// New returns a renderer for format, one of config.OutputTable,
// config.OutputJSON or config.OutputYAML.
func New(w io.Writer, format, currencySymbol string) (*Renderer, error) {
	switch format {
	case config.OutputTable, config.OutputJSON, config.OutputYAML:
	case "":
		format = config.OutputTable
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return &Renderer{w: w, format: format, currency: currencySymbol}, nil
}

// Format returns the output format.
func (r *Renderer) Format() string {
	return r.format
}

// Structured reports whether results are encoded rather than drawn.
func (r *Renderer) Structured() bool {
	return r.format != config.OutputTable
}

// encode writes v as JSON or YAML.
func (r *Renderer) encode(v interface{}) error {
	switch r.format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		_, err = fmt.Fprintln(r.w, string(data))
		return err
	case config.OutputYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", r.format)
	}
}

// Message prints a plain line. Structured formats get {"message": ...}.
func (r *Renderer) Message(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if r.Structured() {
		return r.encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

// Money formats an amount with thousand separators and two decimals, the
// sign in front of the currency symbol.
func Money(d decimal.Decimal, symbol string) string {
	f, _ := d.Abs().Round(2).Float64()
	s := symbol + humanize.FormatFloat("#,###.##", f)
	if d.Round(2).IsNegative() {
		return "-" + s
	}
	return s
}

// Percent formats a percentage with one decimal.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func (r *Renderer) money(d decimal.Decimal) string {
	return Money(d, r.currency)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 1 || len([]rune(s)) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
