package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/dashboard"
	"github.com/trezcool/rekodi/core/student"
)

// Chart names
const (
	Grades                 = "grades"
	AttendanceStatus       = "attendance-status"
	AttendanceDistribution = "attendance-distribution"
	PaymentStatus          = "payment-status"
	FeesDue                = "fees-due"
	FeeSummary             = "fee-summary"
)

var (
	// Names lists every chart, in dashboard order.
	Names = []string{Grades, AttendanceStatus, AttendanceDistribution, PaymentStatus, FeesDue, FeeSummary}

	Titles = map[string]string{
		Grades:                 "Grade Distribution",
		AttendanceStatus:       "Attendance Status",
		AttendanceDistribution: "Attendance Percentage Distribution",
		PaymentStatus:          "Payment Status",
		FeesDue:                "Outstanding Fee Amounts per Student",
		FeeSummary:             "Total Paid vs Pending Fees",
	}

	// errors
	ErrUnknownChart = errors.New("unknown chart")
	ErrNoData       = core.NewValidationError(errors.New("nothing to chart"))

	pastel = []drawing.Color{
		drawing.ColorFromHex("66c5cc"), drawing.ColorFromHex("f6cf71"), drawing.ColorFromHex("f89c74"),
		drawing.ColorFromHex("dcb0f2"), drawing.ColorFromHex("87c55f"), drawing.ColorFromHex("9eb9f3"),
		drawing.ColorFromHex("fe88b1"), drawing.ColorFromHex("c9db74"),
	}
	statusColors = map[string]drawing.Color{
		student.StatusEligible:    drawing.ColorFromHex("2e8b57"),
		student.StatusNotEligible: drawing.ColorFromHex("d62728"),
		student.StatusPaid:        drawing.ColorFromHex("2e8b57"),
		student.StatusPending:     drawing.ColorFromHex("ff8c00"),
	}
	histogramColor = drawing.ColorFromHex("44b78b")
	feeDueColor    = drawing.ColorFromHex("fd8d3c")
)

const minBarWidth = 8

// Renderer draws dashboard charts as PNG images.
type Renderer struct {
	Width  int
	Height int
}

var _ dashboard.ChartRenderer = Renderer{}

func NewRenderer() Renderer {
	return Renderer{Width: 800, Height: 420}
}

// Render writes the named chart of `a` to w.
func (r Renderer) Render(w io.Writer, name string, a student.Analytics) error {
	var err error
	switch name {
	case Grades:
		err = r.pie(w, name, countValues(a.Grades, nil), false)
	case AttendanceStatus:
		err = r.bar(w, name, countValues(a.AttendanceStatuses, statusColors), "Count")
	case AttendanceDistribution:
		err = r.histogram(w, a.AttendanceDistribution)
	case PaymentStatus:
		err = r.bar(w, name, countValues(a.PaymentStatuses, statusColors), "Count")
	case FeesDue:
		err = r.bar(w, name, amountValues(a.FeeDueByStudent, nil), "Outstanding Fees (INR)")
	case FeeSummary:
		err = r.pie(w, name, amountValues(a.FeeDueByStatus, statusColors), true)
	default:
		return ErrUnknownChart
	}
	return errors.Wrapf(err, "rendering %s", name)
}

func countValues(counts []student.Count, colors map[string]drawing.Color) []chart.Value {
	vals := make([]chart.Value, 0, len(counts))
	for i, c := range counts {
		vals = append(vals, chart.Value{
			Label: c.Label,
			Value: float64(c.Count),
			Style: fill(c.Label, i, colors),
		})
	}
	return vals
}

func amountValues(amounts []student.Amount, colors map[string]drawing.Color) []chart.Value {
	vals := make([]chart.Value, 0, len(amounts))
	for i, a := range amounts {
		st := fill(a.Label, i, colors)
		if colors == nil {
			st = chart.Style{FillColor: feeDueColor, StrokeColor: feeDueColor}
		}
		vals = append(vals, chart.Value{Label: a.Label, Value: a.Amount, Style: st})
	}
	return vals
}

func fill(label string, i int, colors map[string]drawing.Color) chart.Style {
	col, ok := colors[label]
	if !ok {
		col = pastel[i%len(pastel)]
	}
	return chart.Style{FillColor: col, StrokeColor: drawing.ColorWhite, StrokeWidth: 1}
}

// pie draws shares of the absolute values; zero values are left out.
func (r Renderer) pie(w io.Writer, name string, vals []chart.Value, withPercent bool) error {
	var total float64
	slices := make([]chart.Value, 0, len(vals))
	for _, v := range vals {
		v.Value = math.Abs(v.Value)
		if v.Value == 0 {
			continue
		}
		total += v.Value
		slices = append(slices, v)
	}
	if total == 0 {
		return ErrNoData
	}
	if withPercent {
		for i := range slices {
			slices[i].Label = fmt.Sprintf("%s (%.1f%%)", slices[i].Label, slices[i].Value/total*100)
		}
	}

	pie := chart.PieChart{
		Title:  Titles[name],
		Width:  r.Width,
		Height: r.Height,
		Values: slices,
	}
	return pie.Render(chart.PNG, w)
}

func (r Renderer) bar(w io.Writer, name string, bars []chart.Value, yName string) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}
	// widen the canvas rather than squeezing bars below minBarWidth
	width := r.Width
	if need := len(bars)*(minBarWidth+4) + 120; need > width {
		width = need
	}

	bc := chart.BarChart{
		Title:  Titles[name],
		Width:  width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		BarWidth:     barWidth(width, len(bars)),
		Bars:         bars,
		UseBaseValue: lo < 0,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
	}
	return bc.Render(chart.PNG, w)
}

func (r Renderer) histogram(w io.Writer, bins []student.Bin) error {
	if len(bins) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(bins))
	for _, b := range bins {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%.0f-%.0f", b.Start, b.End),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: histogramColor, StrokeColor: histogramColor},
		})
	}
	return r.bar(w, AttendanceDistribution, bars, "Number of Students")
}

func barWidth(width, n int) int {
	bw := (width - 80) / (n + 1)
	if bw < minBarWidth {
		return minBarWidth
	}
	if bw > 80 {
		return 80
	}
	return bw
}
