package schema

import "strconv"

// SQLite column affinities assignable by inference.
const (
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeText    = "TEXT"
)

// InferColumnType guesses a SQLite column type from sample values.
// Blank values are discarded first; a column whose sample is entirely
// blank cannot be inferred and defaults to TEXT. A single value that
// fails to parse anywhere in the sample forces the looser type.
func InferColumnType(sample []string) string {
	values := sample[:0:0]
	for _, v := range sample {
		if v != "" {
			values = append(values, v)
		}
	}

	if len(values) == 0 {
		return TypeText
	}

	allInts := true
	for _, v := range values {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInts = false
			break
		}
	}
	if allInts {
		return TypeInteger
	}

	allFloats := true
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloats = false
			break
		}
	}
	if allFloats {
		return TypeReal
	}

	return TypeText
}

// InferColumnTypes infers a type per column from sampled rows.
// Column i's sample is built from every row wide enough to contain
// position i; short rows simply contribute nothing for that column.
func InferColumnTypes(rows [][]string, numCols int) []string {
	types := make([]string, numCols)
	for i := 0; i < numCols; i++ {
		var sample []string
		for _, row := range rows {
			if i < len(row) {
				sample = append(sample, row[i])
			}
		}
		types[i] = InferColumnType(sample)
	}
	return types
}
