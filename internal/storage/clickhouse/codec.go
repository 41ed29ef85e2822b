package clickhouse

import (
	"fmt"
	"strings"

	"econ-sim-lab/internal/storage"
)

// Integer columns are Int64, which the native driver only maps to int64.

// widen converts int arguments to int64 in place.
func widen(vals []any) []any {
	for i, v := range vals {
		if n, ok := v.(int); ok {
			vals[i] = int64(n)
		}
	}
	return vals
}

// intScanner adapts *int scan destinations to int64 columns.
type intScanner struct {
	storage.Scanner
}

func (s intScanner) Scan(dest ...any) error {
	wide := make([]int64, len(dest))
	args := make([]any, len(dest))
	var narrow []int
	for i, d := range dest {
		if _, ok := d.(*int); ok {
			args[i] = &wide[i]
			narrow = append(narrow, i)
			continue
		}
		args[i] = d
	}
	if err := s.Scanner.Scan(args...); err != nil {
		return err
	}
	for _, i := range narrow {
		*dest[i].(*int) = int(wide[i])
	}
	return nil
}

// batchSQL builds the INSERT prefix used by PrepareBatch.
func batchSQL(table string, cols []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)", table, strings.Join(cols, ", "))
}
