package student

import (
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// colRow holds the position of each frame row in the records it was built from.
const colRow = "_row"

// newFrame returns a dataframe of the given columns of records.
// Text columns are trimmed; numeric columns are float.
func newFrame(records []Record, cols ...string) dataframe.DataFrame {
	rows := make([]int, len(records))
	for i := range records {
		rows[i] = i
	}
	se := make([]series.Series, 0, len(cols)+1)
	se = append(se, series.New(rows, series.Int, colRow))

	for _, col := range cols {
		if IsNumeric(col) {
			vals := make([]float64, len(records))
			for i, r := range records {
				vals[i] = r.number(col)
			}
			se = append(se, series.New(vals, series.Float, col))
			continue
		}
		vals := make([]string, len(records))
		for i, r := range records {
			vals[i] = strings.TrimSpace(r.Text(col))
		}
		se = append(se, series.New(vals, series.String, col))
	}
	return dataframe.New(se...)
}

// pick returns the records of the rows left in df.
func pick(records []Record, df dataframe.DataFrame) ([]Record, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	idx, err := df.Col(colRow).Int()
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = records[j]
	}
	return out, nil
}

// aggregate groups df by col and applies typ to valueCol.
// It returns the group labels along with their aggregated value.
func aggregate(df dataframe.DataFrame, col, valueCol string, typ dataframe.AggregationType) ([]string, []float64, error) {
	if df.Err != nil {
		return nil, nil, df.Err
	}
	if df.Nrow() == 0 {
		return []string{}, []float64{}, nil
	}
	agg := df.GroupBy(col).Aggregation([]dataframe.AggregationType{typ}, []string{valueCol})
	if agg.Err != nil {
		return nil, nil, agg.Err
	}
	return agg.Col(col).Records(), agg.Col(valueCol + "_" + typ.String()).Float(), nil
}

// finite saturates overflowed values at ±MaxFloat64; NaN is 0.
func finite(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}
