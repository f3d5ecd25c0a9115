package student

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
)

// HistogramBins is the number of bins of the attendance distribution.
const HistogramBins = 20

type (
	// Count is the number of records sharing a label.
	Count struct {
		Label string `json:"label"`
		Count int    `json:"count"`
	}

	// Bin is a histogram bucket covering [Start, End); the last bin also includes End.
	Bin struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Count int     `json:"count"`
	}

	// Amount is a labelled sum.
	Amount struct {
		Label  string  `json:"label"`
		Amount float64 `json:"amount"`
	}

	// Analytics summarises a set of processed records.
	Analytics struct {
		Records                int      `json:"records"`
		Grades                 []Count  `json:"grades"`
		AttendanceStatuses     []Count  `json:"attendance_statuses"`
		PaymentStatuses        []Count  `json:"payment_statuses"`
		AttendanceDistribution []Bin    `json:"attendance_distribution"`
		FeeDueByStudent        []Amount `json:"fee_due_by_student"`
		FeeDueByStatus         []Amount `json:"fee_due_by_status"`
	}
)

// Analyze computes the dashboard analytics of records.
func Analyze(records []Record) Analytics {
	df := newFrame(records, ColGrade, ColAttendanceStatus, ColPaymentStatus, ColFeeDue)
	a := Analytics{Records: len(records)}
	// the frame holds every grouped column, so grouping cannot fail
	a.Grades, _ = countBy(df, ColGrade)
	a.AttendanceStatuses, _ = countBy(df, ColAttendanceStatus)
	a.PaymentStatuses, _ = countBy(df, ColPaymentStatus)
	a.FeeDueByStatus, _ = sumBy(df, ColPaymentStatus, ColFeeDue)

	pcts := make([]float64, len(records))
	a.FeeDueByStudent = make([]Amount, 0, len(records))
	for i, r := range records {
		pcts[i] = r.AttendancePercentage
		a.FeeDueByStudent = append(a.FeeDueByStudent, Amount{Label: r.Name, Amount: finite(r.FeeDue)})
	}
	a.AttendanceDistribution = Histogram(pcts, HistogramBins)
	return a
}

// CountBy counts records per value of col, most frequent first (ties by value).
func CountBy(records []Record, col string) ([]Count, error) {
	return countBy(newFrame(records, col), col)
}

// SumBy sums valueCol per value of col, ordered by value.
func SumBy(records []Record, col, valueCol string) ([]Amount, error) {
	return sumBy(newFrame(records, col, valueCol), col, valueCol)
}

func countBy(df dataframe.DataFrame, col string) ([]Count, error) {
	labels, counts, err := aggregate(df, col, colRow, dataframe.Aggregation_COUNT)
	if err != nil {
		return nil, err
	}
	out := make([]Count, len(labels))
	for i, l := range labels {
		out[i] = Count{Label: l, Count: int(math.Round(counts[i]))}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

func sumBy(df dataframe.DataFrame, col, valueCol string) ([]Amount, error) {
	labels, sums, err := aggregate(df, col, valueCol, dataframe.Aggregation_SUM)
	if err != nil {
		return nil, err
	}
	out := make([]Amount, len(labels))
	for i, l := range labels {
		out[i] = Amount{Label: l, Amount: finite(sums[i])}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// Histogram splits the finite values into n equal-width bins spanning [min, max].
// A single bin is returned when every value is equal; nil when there is nothing to count.
func Histogram(values []float64, n int) []Bin {
	if n < 1 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	count := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		count++
	}
	if count == 0 {
		return nil
	}

	// scaled before subtracting so that the span of extreme values does not overflow
	width := hi/float64(n) - lo/float64(n)
	if lo == hi || width <= 0 || math.IsInf(width, 0) {
		return []Bin{{Start: lo, End: hi, Count: count}}
	}

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Start = lerp(lo, hi, float64(i)/float64(n))
		bins[i].End = lerp(lo, hi, float64(i+1)/float64(n))
	}
	bins[0].Start = lo
	bins[n-1].End = hi

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		pos := v/width - lo/width
		i := n - 1
		if pos < float64(n) {
			i = int(math.Max(pos, 0))
		}
		bins[i].Count++
	}
	return bins
}

func lerp(lo, hi, t float64) float64 {
	return lo*(1-t) + hi*t
}
