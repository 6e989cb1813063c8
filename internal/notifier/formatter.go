package notifier

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"StockVision/internal/forecast"
	"StockVision/internal/model"
)

// maxListedPoints caps the forecast lines in one message.
const maxListedPoints = 10

func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// changePct renders the expected move from the last close to the final forecast.
func changePct(res *model.ForecastResult) string {
	if res.LastClose == 0 || len(res.Points) == 0 {
		return "n/a"
	}
	v := res.ChangePct()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	change := decimal.NewFromFloat(v)
	sign := ""
	if change.IsPositive() {
		sign = "+"
	}
	return sign + change.StringFixed(2) + "%"
}

// compact renders large amounts with a T/B/M suffix.
func compact(v float64) string {
	units := []struct {
		div    float64
		suffix string
	}{{1e12, "T"}, {1e9, "B"}, {1e6, "M"}}
	for _, u := range units {
		if v >= u.div {
			return decimal.NewFromFloat(v/u.div).StringFixed(2) + u.suffix
		}
	}
	return money(v)
}

// FormatForecastReport formats a forecast result into a Telegram message.
func FormatForecastReport(res *model.ForecastResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📈 <b>%s forecast</b> | %s\n\n", html.EscapeString(res.Symbol), res.Model.DisplayName())
	fmt.Fprintf(&b, "Last close: %s (%s)\n", money(res.LastClose), res.LastDate.Format("2006-01-02"))
	if final, err := res.Final(); err == nil {
		fmt.Fprintf(&b, "Day %d: %s (%s)\n\n", len(res.Points), money(final.Close), changePct(res))
	}

	b.WriteString("<b>Forecast:</b>\n")
	for i, p := range res.Points {
		if len(res.Points) > maxListedPoints && i == maxListedPoints-1 {
			fmt.Fprintf(&b, "  … %d more\n", len(res.Points)-maxListedPoints)
			last := res.Points[len(res.Points)-1]
			fmt.Fprintf(&b, "  %s  %s\n", last.Date.Format("2006-01-02"), money(last.Close))
			break
		}
		fmt.Fprintf(&b, "  %s  %s\n", p.Date.Format("2006-01-02"), money(p.Close))
	}

	b.WriteString("\n<b>Model performance:</b>\n")
	b.WriteString(formatEvaluation(res))
	fmt.Fprintf(&b, "\n<i>run %s</i>", res.RunID)
	return b.String()
}

func formatEvaluation(res *model.ForecastResult) string {
	if res.Metrics != nil {
		return fmt.Sprintf("  MAE %s | R² %.4f (%s)\n", money(res.Metrics.MAE), res.Metrics.R2, forecast.Rate(res.Metrics.R2))
	}
	if len(res.Components) == 0 {
		return "  n/a\n"
	}
	kinds := make([]model.ModelKind, 0, len(res.Components))
	for k := range res.Components {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var b strings.Builder
	b.WriteString("  weighted 0.6 × Random Forest + 0.4 × Linear\n")
	for _, k := range kinds {
		ev := res.Components[k]
		fmt.Fprintf(&b, "  %s: MAE %s | R² %.4f (%s)\n", k.DisplayName(), money(ev.MAE), ev.R2, forecast.Rate(ev.R2))
	}
	return b.String()
}

// FormatStockInfo formats profile metadata and the latest indicator values.
func FormatStockInfo(p *model.Profile, s *model.Series) string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = p.Symbol
	}
	fmt.Fprintf(&b, "🏷 <b>%s</b> (%s)\n\n", html.EscapeString(name), html.EscapeString(p.Symbol))
	if p.Exchange != "" {
		fmt.Fprintf(&b, "Exchange: %s\n", html.EscapeString(p.Exchange))
	}
	if p.Currency != "" {
		fmt.Fprintf(&b, "Currency: %s\n", p.Currency)
	}
	if p.Sector != "" {
		fmt.Fprintf(&b, "Sector: %s\n", html.EscapeString(p.Sector))
	}
	fmt.Fprintf(&b, "Price: %s\n", money(p.MarketPrice))
	if p.Volume > 0 {
		fmt.Fprintf(&b, "Volume: %s\n", decimal.NewFromFloat(p.Volume).StringFixed(0))
	}
	if p.MarketCap > 0 {
		fmt.Fprintf(&b, "Market cap: %s\n", compact(p.MarketCap))
	}
	if p.PERatio > 0 {
		fmt.Fprintf(&b, "P/E: %s\n", decimal.NewFromFloat(p.PERatio).StringFixed(2))
	}
	if p.High52w > 0 {
		fmt.Fprintf(&b, "52w range: %s – %s (position %.0f%%)\n", money(p.Low52w), money(p.High52w), p.Position52w*100)
	}

	if s == nil || s.Len() == 0 {
		return b.String()
	}
	i := s.Len() - 1
	b.WriteString("\n<b>Indicators:</b>\n")
	fmt.Fprintf(&b, "  MA20 %s | MA50 %s | MA200 %s\n",
		money(s.Value(model.ColMA20, i)), money(s.Value(model.ColMA50, i)), money(s.Value(model.ColMA200, i)))
	fmt.Fprintf(&b, "  RSI %.1f\n", s.Value(model.ColRSI, i))
	fmt.Fprintf(&b, "  MACD %.3f | signal %.3f\n", s.Value(model.ColMACD, i), s.Value(model.ColMACDSignal, i))
	fmt.Fprintf(&b, "  Bollinger %s – %s\n", money(s.Value(model.ColBBLower, i)), money(s.Value(model.ColBBUpper, i)))
	return b.String()
}

// FormatLatest lists the most recent forecast of every model.
func FormatLatest(results []*model.ForecastResult) string {
	if len(results) == 0 {
		return "No forecasts yet. Try /predict AAPL 30 ensemble"
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Latest forecasts</b>\n\n")
	for _, r := range results {
		final, err := r.Final()
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s · %s: %s → %s in %d days (%s)\n",
			html.EscapeString(r.Symbol), r.Model.DisplayName(), money(r.LastClose), money(final.Close),
			len(r.Points), changePct(r))
	}
	return b.String()
}

// FormatHelp lists the available commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /predict SYMBOL [DAYS] [MODEL]  (DAYS 1-365, MODEL linear | rf | ensemble)\n" +
		"• /info SYMBOL\n" +
		"• /last\n" +
		"• /help"
}

// FormatError renders a failed request.
func FormatError(action string, err error) string {
	return fmt.Sprintf("❌ %s failed: %s", action, html.EscapeString(err.Error()))
}
