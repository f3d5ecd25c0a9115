package student

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// filterColumns are the columns a Filter narrows, in FilterOptions order.
var filterColumns = []string{ColDepartment, ColYear, ColName, ColSemester}

type (
	// Filter selects records by department, year, name and semester.
	// A nil field selects every option; a non-nil field selects only the listed values.
	Filter struct {
		Departments []string `json:"departments"`
		Years       []string `json:"years"`
		Names       []string `json:"names"`
		Semesters   []string `json:"semesters"`
	}

	// FilterOptions lists the distinct non-empty values available to each filter.
	FilterOptions struct {
		Departments []string `json:"departments"`
		Years       []string `json:"years"`
		Names       []string `json:"names"`
		Semesters   []string `json:"semesters"`
	}
)

// Options collects the sorted distinct values of the filterable columns.
func Options(records []Record) FilterOptions {
	if len(records) == 0 {
		return FilterOptions{Departments: []string{}, Years: []string{}, Names: []string{}, Semesters: []string{}}
	}
	return options(newFrame(records, filterColumns...))
}

func options(df dataframe.DataFrame) FilterOptions {
	return FilterOptions{
		Departments: distinct(df.Col(ColDepartment).Records()),
		Years:       distinct(df.Col(ColYear).Records()),
		Names:       distinct(df.Col(ColName).Records()),
		Semesters:   distinct(df.Col(ColSemester).Records()),
	}
}

// Selected returns the values of opts actually selected by f (all of them for nil fields).
func (f Filter) Selected(opts FilterOptions) Filter {
	choose := func(sel, all []string) []string {
		if sel == nil {
			return all
		}
		return sel
	}
	return Filter{
		Departments: choose(f.Departments, opts.Departments),
		Years:       choose(f.Years, opts.Years),
		Names:       choose(f.Names, opts.Names),
		Semesters:   choose(f.Semesters, opts.Semesters),
	}
}

// IsZero reports whether f selects every option.
func (f Filter) IsZero() bool {
	return f.Departments == nil && f.Years == nil && f.Names == nil && f.Semesters == nil
}

// Apply returns the records matching f.
// A column is only filtered when it has at least one option in records;
// records with a blank value in a filtered column never match.
func (f Filter) Apply(records []Record) []Record {
	if len(records) == 0 {
		return []Record{}
	}
	df := newFrame(records, filterColumns...)
	opts := options(df)

	checks := []struct {
		col      string
		sel, all []string
	}{
		{ColDepartment, f.Departments, opts.Departments},
		{ColYear, f.Years, opts.Years},
		{ColName, f.Names, opts.Names},
		{ColSemester, f.Semesters, opts.Semesters},
	}
	// chained Filter calls are AND-ed
	for _, c := range checks {
		if len(c.all) == 0 {
			continue
		}
		df = df.Filter(dataframe.F{Colname: c.col, Comparator: series.In, Comparando: selection(c.sel, c.all)})
	}

	out, err := pick(records, df)
	if err != nil { // the frame only holds known columns
		return []Record{}
	}
	return out
}

func selection(sel, all []string) []string {
	if sel == nil {
		return all
	}
	out := make([]string, 0, len(sel))
	for _, s := range sel {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func distinct(vals []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sortValues(out)
	return out
}

// sortValues sorts numerically when every value is a number, lexically otherwise.
func sortValues(vals []string) {
	nums := make(map[string]float64, len(vals))
	for _, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			sort.Strings(vals)
			return
		}
		nums[v] = f
	}
	sort.Slice(vals, func(i, j int) bool { return nums[vals[i]] < nums[vals[j]] })
}
