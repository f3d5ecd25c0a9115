package student

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	a := Analyze(sampleRecords(t))

	assert.Equal(t, 3, a.Records)
	assert.ElementsMatch(t, []Count{{GradeAPlus, 1}, {GradeB, 1}, {GradeF, 1}}, a.Grades)
	assert.Equal(t, []Count{{StatusNotEligible, 2}, {StatusEligible, 1}}, a.AttendanceStatuses)
	assert.Equal(t, []Count{{StatusPaid, 2}, {StatusPending, 1}}, a.PaymentStatuses)
	assert.Equal(t, []Amount{{"Amani", 0}, {"Baraka", 900}, {"Chausiku", -50}}, a.FeeDueByStudent)
	assert.Equal(t, []Amount{{StatusPaid, -50}, {StatusPending, 900}}, a.FeeDueByStatus)

	var total int
	for _, b := range a.AttendanceDistribution {
		total += b.Count
	}
	assert.Len(t, a.AttendanceDistribution, HistogramBins)
	assert.Equal(t, 3, total)
}

func TestAnalyze_empty(t *testing.T) {
	a := Analyze(nil)
	assert.Zero(t, a.Records)
	assert.Empty(t, a.Grades)
	assert.Nil(t, a.AttendanceDistribution)
	assert.Empty(t, a.FeeDueByStatus)
}

func TestCountBy_ordering(t *testing.T) {
	records := []Record{
		{Derived: Derived{Grade: GradeF}},
		{Derived: Derived{Grade: GradeB}},
		{Derived: Derived{Grade: GradeF}},
		{Derived: Derived{Grade: GradeA}},
	}
	got, err := CountBy(records, ColGrade)
	require.NoError(t, err)
	assert.Equal(t, []Count{{GradeF, 2}, {GradeA, 1}, {GradeB, 1}}, got)
}

func TestSumBy(t *testing.T) {
	records := []Record{
		{Derived: Derived{PaymentStatus: StatusPending, FeeDue: 100}},
		{Derived: Derived{PaymentStatus: StatusPaid, FeeDue: -20}},
		{Derived: Derived{PaymentStatus: StatusPending, FeeDue: 50.5}},
		{Derived: Derived{PaymentStatus: StatusPending, FeeDue: math.MaxFloat64}},
		{Derived: Derived{PaymentStatus: StatusPending, FeeDue: math.MaxFloat64}},
	}
	got, err := SumBy(records, ColPaymentStatus, ColFeeDue)
	require.NoError(t, err)
	// the overflowing pending sum saturates
	assert.Equal(t, []Amount{{StatusPaid, -20}, {StatusPending, math.MaxFloat64}}, got)

	got, err = SumBy(records[:3], ColPaymentStatus, ColFeeDue)
	require.NoError(t, err)
	assert.Equal(t, []Amount{{StatusPaid, -20}, {StatusPending, 150.5}}, got)

	got, err = SumBy(nil, ColPaymentStatus, ColFeeDue)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistogram(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		n      int
		want   []Bin
	}{
		{name: "empty", values: nil, n: 20, want: nil},
		{name: "all equal", values: []float64{80, 80}, n: 20, want: []Bin{{Start: 80, End: 80, Count: 2}}},
		{name: "non-finite values skipped", values: []float64{math.NaN(), math.Inf(1), 5, math.Inf(-1)}, n: 20, want: []Bin{{Start: 5, End: 5, Count: 1}}},
		{name: "only non-finite values", values: []float64{math.NaN(), math.Inf(1)}, n: 20, want: nil},
		{
			name: "extreme span", values: []float64{-math.MaxFloat64, math.MaxFloat64}, n: 2,
			want: []Bin{
				{Start: -math.MaxFloat64, End: 0, Count: 1},
				{Start: 0, End: math.MaxFloat64, Count: 1},
			},
		},
		{
			name: "spread", values: []float64{0, 10, 50, 99, 100}, n: 4,
			want: []Bin{
				{Start: 0, End: 25, Count: 2},
				{Start: 25, End: 50, Count: 0},
				{Start: 50, End: 75, Count: 1},
				{Start: 75, End: 100, Count: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Histogram(tt.values, tt.n))
		})
	}
}
