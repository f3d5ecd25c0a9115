package student

// SampleRow builds a template-shaped row; numbers are given in column order:
// internal, external, total classes, attended, tuition, paid.
func SampleRow(id, name, dept, year, sem string, nums ...string) []Cell {
	texts := []string{
		id, name, "F", "2004-02-11", "20", name + "@uni.test", "0800000000", "1 Campus Rd",
		dept, "BSc", year, "2022", sem, "CS101", "Algorithms",
	}
	for i := 0; i < len(RequiredColumns); i++ {
		var n string
		if i < len(nums) {
			n = nums[i]
		}
		texts = append(texts, n)
	}
	row := make([]Cell, len(texts))
	for i, t := range texts {
		row[i] = Cell{Text: t, Raw: t}
	}
	return row
}

// SampleTable returns a three-row upload covering every payment and attendance status.
func SampleTable() Table {
	return Table{
		Columns: append([]string(nil), InputColumns...),
		Rows: [][]Cell{
			SampleRow("S1", "Amani", "Science", "1", "1", "40", "55", "40", "36", "1000", "1000"),
			SampleRow("S2", "Baraka", "Arts", "2", "2", "30", "42.5", "0", "0", "1200", "300"),
			SampleRow("S3", "Chausiku", "Science", "2", "1", "20", "30", "50", "20", "900", "950"),
		},
	}
}
