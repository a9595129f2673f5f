// Package report renders simulation results for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/newthinker/stocksim/internal/aggregate"
	"github.com/newthinker/stocksim/internal/chart"
	"github.com/newthinker/stocksim/internal/core"
	"github.com/newthinker/stocksim/internal/simulator"
)

const ruleWidth = 45

type styles struct {
	title lipgloss.Style
	gain  lipgloss.Style
	loss  lipgloss.Style
	muted lipgloss.Style
	best  lipgloss.Style
}

// Printer writes human readable reports to w.
type Printer struct {
	w        io.Writer
	currency *money.Currency
	styles   styles
}

// New creates a printer for amounts in the given ISO 4217 currency. Colors
// are only emitted when color is set and w is a terminal.
func New(w io.Writer, currency string, color bool) (*Printer, error) {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return nil, core.Errorf(core.ErrConfigInvalid, "unknown currency %q", currency)
	}

	r := lipgloss.NewRenderer(w)
	s := styles{
		title: r.NewStyle(),
		gain:  r.NewStyle(),
		loss:  r.NewStyle(),
		muted: r.NewStyle(),
		best:  r.NewStyle(),
	}
	if color {
		s.title = s.title.Bold(true)
		s.gain = s.gain.Foreground(lipgloss.Color("#22C55E")).Bold(true)
		s.loss = s.loss.Foreground(lipgloss.Color("#EF4444")).Bold(true)
		s.muted = s.muted.Foreground(lipgloss.Color("#6B7280"))
		s.best = s.best.Foreground(lipgloss.Color("#EAB308")).Bold(true)
	}

	return &Printer{w: w, currency: cur, styles: s}, nil
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Investment writes a single investment between two rules.
func (p *Printer) Investment(r simulator.InvestmentResult) error {
	var b strings.Builder
	b.WriteString(rule() + "\n")
	p.investmentBody(&b, r)
	b.WriteString(rule() + "\n")
	return p.flush(&b)
}

func (p *Printer) investmentBody(b *strings.Builder, r simulator.InvestmentResult) {
	fmt.Fprintf(b, "%s\n", p.styles.title.Render(fmt.Sprintf("Stock: %s (%s)", r.Ticker, r.Name)))
	fmt.Fprintf(b, "Buy Date: %s @ %s\n", date(r.BuyDate), p.formatMoney(r.BuyPrice))
	fmt.Fprintf(b, "Sell Date: %s @ %s\n", date(r.SellDate), p.formatMoney(r.SellPrice))
	fmt.Fprintf(b, "Shares: %s\n\n", shares(r.Shares))
	fmt.Fprintf(b, "Investment: %s -> %s\n", p.formatMoney(r.Amount), p.formatMoney(r.FinalValue))
	fmt.Fprintf(b, "Return: %s\n", p.tone(r.Profit, fmt.Sprintf("%s (%s)", p.signedMoney(r.Profit), signedPercent(r.PercentReturn))))
	if rate, ok := r.Annualized.Get(); ok {
		fmt.Fprintf(b, "Annualized: %s\n", p.tone(rate, signedPercent(rate)))
	}
}

// Benchmark writes an investment next to its benchmark and the verdict.
func (p *Printer) Benchmark(r aggregate.BenchmarkResult) error {
	var b strings.Builder
	b.WriteString(rule() + "\n")
	p.investmentBody(&b, r.Investment)
	b.WriteString(rule() + "\n")
	fmt.Fprintf(&b, "%s\n", p.styles.title.Render(fmt.Sprintf("Benchmark: %s (%s)", r.Benchmark.Ticker, r.Benchmark.Name)))
	fmt.Fprintf(&b, "Investment: %s -> %s\n", p.formatMoney(r.Benchmark.Amount), p.formatMoney(r.Benchmark.FinalValue))
	fmt.Fprintf(&b, "Return: %s\n", p.tone(r.Benchmark.Profit,
		fmt.Sprintf("%s (%s)", p.signedMoney(r.Benchmark.Profit), signedPercent(r.Benchmark.PercentReturn))))
	if rate, ok := r.Benchmark.Annualized.Get(); ok {
		fmt.Fprintf(&b, "Annualized: %s\n", p.tone(rate, signedPercent(rate)))
	}
	b.WriteString(rule() + "\n")

	switch r.Verdict {
	case aggregate.VerdictBeat:
		fmt.Fprintf(&b, "%s\n", p.styles.gain.Render(fmt.Sprintf("BEAT the market by %s", percent(r.Delta))))
	case aggregate.VerdictUnderperformed:
		fmt.Fprintf(&b, "%s\n", p.styles.loss.Render(fmt.Sprintf("UNDERPERFORMED the market by %s", percent(-r.Delta))))
	default:
		fmt.Fprintf(&b, "TIED with the market\n")
	}
	b.WriteString(rule() + "\n")
	return p.flush(&b)
}

// Portfolio writes each holding and the aggregate totals.
func (p *Printer) Portfolio(r aggregate.PortfolioResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.styles.title.Render(fmt.Sprintf("Portfolio: %s to %s", date(r.BuyDate), date(r.SellDate))))
	b.WriteString(rule() + "\n")
	p.holdings(&b, r.Holdings)
	b.WriteString(rule() + "\n")
	p.totals(&b, r)
	b.WriteString(rule() + "\n")
	return p.flush(&b)
}

func (p *Printer) holdings(b *strings.Builder, holdings []simulator.InvestmentResult) {
	for _, h := range holdings {
		fmt.Fprintf(b, "%-8s %14s -> %14s  %s\n", h.Ticker, p.formatMoney(h.Amount), p.formatMoney(h.FinalValue),
			p.tone(h.Profit, signedPercent(h.PercentReturn)))
	}
}

func (p *Printer) totals(b *strings.Builder, r aggregate.PortfolioResult) {
	fmt.Fprintf(b, "Total Invested: %s\n", p.formatMoney(r.TotalInvested))
	fmt.Fprintf(b, "Total Value: %s\n", p.formatMoney(r.TotalValue))
	fmt.Fprintf(b, "Total Return: %s\n", p.tone(r.TotalProfit,
		fmt.Sprintf("%s (%s)", p.signedMoney(r.TotalProfit), signedPercent(r.PercentReturn))))
	if rate, ok := r.Annualized.Get(); ok {
		fmt.Fprintf(b, "Annualized: %s\n", p.tone(rate, signedPercent(rate)))
	}
}

// Ranking writes the ranked tickers, best first.
func (p *Printer) Ranking(r aggregate.RankingResult) error {
	var b strings.Builder
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "%s\n\n", p.styles.muted.Render("Skipped (no data): "+strings.Join(r.Skipped, ", ")))
	}
	fmt.Fprintf(&b, "%s\n", p.styles.title.Render(fmt.Sprintf("Best performers: %s invested %s to %s",
		p.formatMoney(r.Amount), date(r.BuyDate), date(r.SellDate))))
	b.WriteString(rule() + "\n")
	for i, h := range r.Rankings {
		annual := "n/a"
		if rate, ok := h.Annualized.Get(); ok {
			annual = signedPercent(rate) + "/yr"
		}
		fmt.Fprintf(&b, "%2d. %-8s %14s  %s  %s\n", i+1, h.Ticker, p.formatMoney(h.FinalValue),
			p.tone(h.Profit, signedPercent(h.PercentReturn)), p.styles.muted.Render(annual))
	}
	b.WriteString(rule() + "\n")
	return p.flush(&b)
}

// Comparison writes each scenario with its totals and marks the best one.
func (p *Printer) Comparison(r aggregate.ComparisonResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.styles.title.Render(fmt.Sprintf("Scenario comparison: %s to %s", date(r.BuyDate), date(r.SellDate))))
	best := r.Best()
	for i, s := range r.Scenarios {
		b.WriteString(rule() + "\n")
		name := s.Name
		if i == best && len(r.Scenarios) > 1 {
			name += " " + p.styles.best.Render("(best)")
		}
		fmt.Fprintf(&b, "%s\n", name)
		p.holdings(&b, s.Holdings)
		p.totals(&b, s.PortfolioResult)
	}
	b.WriteString(rule() + "\n")
	return p.flush(&b)
}

// DCA writes a dollar-cost averaging result.
func (p *Printer) DCA(r simulator.DCAResult) error {
	var b strings.Builder
	b.WriteString(rule() + "\n")
	fmt.Fprintf(&b, "%s\n", p.styles.title.Render(fmt.Sprintf("DCA: %s (%s)", r.Ticker, r.Name)))
	fmt.Fprintf(&b, "Period: %s to %s\n", date(r.StartDate), date(r.EndDate))
	fmt.Fprintf(&b, "Monthly Amount: %s\n", p.formatMoney(r.AmountPerPeriod))
	fmt.Fprintf(&b, "Purchases: %d\n", r.NumPurchases)
	if n := r.SkippedPeriods(); n > 0 {
		fmt.Fprintf(&b, "%s\n", p.styles.muted.Render(fmt.Sprintf("Skipped: %d (no data)", n)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Invested: %s\n", p.formatMoney(r.TotalInvested))
	fmt.Fprintf(&b, "Total Shares: %s\n", shares(r.TotalShares))
	fmt.Fprintf(&b, "Avg Cost/Share: %s\n", p.formatMoney(r.AvgCostPerShare))
	fmt.Fprintf(&b, "Current Price: %s\n", p.formatMoney(r.CurrentPrice))
	fmt.Fprintf(&b, "Final Value: %s\n", p.formatMoney(r.FinalValue))
	fmt.Fprintf(&b, "Return: %s\n", p.tone(r.Profit,
		fmt.Sprintf("%s (%s)", p.signedMoney(r.Profit), signedPercent(r.PercentReturn))))
	b.WriteString(rule() + "\n")
	return p.flush(&b)
}

// Price writes a ticker's latest price.
func (p *Printer) Price(symbol string, value float64) error {
	_, err := fmt.Fprintf(p.w, "%s: %s\n", symbol, p.formatMoney(value))
	return err
}

// Chart writes one sparkline per series with its final value.
func (p *Printer) Chart(series []chart.Series, amount float64, start time.Time, width int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.styles.title.Render(fmt.Sprintf("Investment performance: %s invested on %s",
		p.formatMoney(amount), date(start))))
	for _, s := range series {
		last := s.Last()
		fmt.Fprintf(&b, "%-8s %s %14s  %s\n", s.Label,
			p.tone(last-amount, chart.Sparkline(s.Values(), width)),
			p.formatMoney(last), p.tone(last-amount, signedPercent((last-amount)/amount*100)))
	}
	return p.flush(&b)
}

// Saved reports where an artifact was written.
func (p *Printer) Saved(location string) error {
	_, err := fmt.Fprintf(p.w, "Chart saved to %s\n", location)
	return err
}

// Skipped lists tickers left out for missing data.
func (p *Printer) Skipped(tickers []string) error {
	if len(tickers) == 0 {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "%s\n", p.styles.muted.Render("Skipped (no data): "+strings.Join(tickers, ", ")))
	return err
}

func (p *Printer) tone(v float64, s string) string {
	switch {
	case v > 0:
		return p.styles.gain.Render(s)
	case v < 0:
		return p.styles.loss.Render(s)
	default:
		return s
	}
}

func (p *Printer) flush(b *strings.Builder) error {
	_, err := io.WriteString(p.w, b.String())
	return err
}

func rule() string {
	return strings.Repeat("=", ruleWidth)
}

func date(t time.Time) string {
	return t.Format(core.DateLayout)
}
