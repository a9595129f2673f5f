package report

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatMoney renders amount in the printer's currency, rounded to the
// currency's minor unit.
func (p *Printer) formatMoney(amount float64) string {
	minor := decimal.NewFromFloat(amount).Shift(int32(p.currency.Fraction)).Round(0)
	return money.New(minor.IntPart(), p.currency.Code).Display()
}

// signedMoney is formatMoney with an explicit plus sign for gains.
func (p *Printer) signedMoney(amount float64) string {
	s := p.formatMoney(amount)
	if !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1) + "%"
}

func signedPercent(v float64) string {
	d := decimal.NewFromFloat(v).Round(1)
	if d.IsNegative() {
		return d.StringFixed(1) + "%"
	}
	return "+" + d.StringFixed(1) + "%"
}

// numbers formats plain quantities with English digit grouping.
var numbers = message.NewPrinter(language.English)

// shares renders a share count with four decimals and grouped thousands.
// Rounding is done in decimal so halves round away from zero.
func shares(v float64) string {
	return numbers.Sprintf("%.4f", decimal.NewFromFloat(v).Round(4).InexactFloat64())
}
