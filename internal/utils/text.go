package utils

import (
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

// SplitLines returns the trimmed, non-empty lines of input.
func SplitLines(input string) []string {
	var out []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseNumberList parses "1,3, 5-7" into sorted unique 1-based positions that
// are all <= max.
func ParseNumberList(input string, max int) ([]int, error) {
	seen := make(map[int]struct{})
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, pkgerrors.NewValidationError("Send account numbers, e.g. 1,3,5-7")
	}

	for _, f := range fields {
		lo, hi, isRange := strings.Cut(f, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, pkgerrors.NewValidationErrorf("Invalid number: %s", f)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(hi); err != nil || end < start {
				return nil, pkgerrors.NewValidationErrorf("Invalid range: %s", f)
			}
		}
		if start < 1 || end > max {
			return nil, pkgerrors.NewValidationErrorf("Numbers must be between 1 and %d", max)
		}
		for i := start; i <= end; i++ {
			seen[i] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}
