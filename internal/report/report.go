// Package report renders forecasts and indicator tables for the terminal.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockVision/internal/forecast"
	"StockVision/internal/model"
	"StockVision/internal/recorder"
)

const dateLayout = "2006-01-02"

// WriteForecast renders the forecast points followed by the evaluation summary.
func WriteForecast(w io.Writer, res *model.ForecastResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s | %s", res.Symbol, res.Model.DisplayName()))
	t.AppendHeader(table.Row{"Step", "Date", "Close", "Change"})
	t.AppendRow(table.Row{0, res.LastDate.Format(dateLayout), price(res.LastClose), "last close"})
	t.AppendSeparator()
	for i, p := range res.Points {
		t.AppendRow(table.Row{i + 1, p.Date.Format(dateLayout), price(p.Close), change(res.LastClose, p.Close)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()

	fmt.Fprintln(w, forecast.FormatMetrics(res.Metrics))
	if len(res.Components) > 0 {
		c := table.NewWriter()
		c.SetOutputMirror(w)
		c.SetTitle("Ensemble legs")
		c.AppendHeader(table.Row{"Model", "MAE", "R²", "Rating", "Train", "Test"})
		for _, kind := range []model.ModelKind{model.KindRandomForest, model.KindLinear} {
			ev, ok := res.Components[kind]
			if !ok {
				continue
			}
			c.AppendRow(table.Row{kind.DisplayName(), price(ev.MAE), fmt.Sprintf("%.4f", ev.R2), forecast.Rate(ev.R2), ev.TrainRows, ev.TestRows})
		}
		c.Render()
	}
}

// WriteIndicators renders the last rows of an indicator series.
func WriteIndicators(w io.Writer, s *model.Series, rows int) {
	tail := s.Tail(rows)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s | last %d of %d bars", s.Symbol, tail.Len(), s.Len()))

	header := table.Row{"Date", "Close"}
	for _, col := range model.IndicatorColumns {
		header = append(header, col)
	}
	t.AppendHeader(header)
	for i, bar := range tail.Bars {
		row := table.Row{bar.Time.Format(dateLayout), price(bar.Close)}
		for _, col := range model.IndicatorColumns {
			row = append(row, value(tail.Value(col, i)))
		}
		t.AppendRow(row)
	}
	t.Render()
}

// WriteRuns renders recorded forecast runs.
func WriteRuns(w io.Writer, symbol string, runs []recorder.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(symbol + " | recorded runs")
	t.AppendHeader(table.Row{"Created", "Model", "Days", "Last", "Final", "Change", "Run"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.CreatedAt.Format("2006-01-02 15:04"), r.Model.DisplayName(), r.Days,
			price(r.LastClose), price(r.FinalClose), change(r.LastClose, r.FinalClose), r.RunID})
	}
	t.Render()
}

func price(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func value(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func change(from, to float64) string {
	if from == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", (to/from-1)*100)
}
