// Package indices parses column selections such as "4,5" or "6,8-11".
package indices

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cognicore/standoff/pkg/standoff/internalerr"
)

var rangePattern = regexp.MustCompile(`^(-?\d+)-(-?\d+)$`)

// Parse returns the indices named by a comma-separated list of integers
// and start-end ranges. Ranges are half-open, so "8-11" yields 8, 9, 10.
// Negative bounds are allowed: "-3--1" yields -3, -2.
func Parse(expr string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)

		if m := rangePattern.FindStringSubmatch(part); m != nil {
			start, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, errors.Wrapf(internalerr.ErrInvalidInput, "failed to parse indices %q", expr)
			}
			end, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, errors.Wrapf(internalerr.ErrInvalidInput, "failed to parse indices %q", expr)
			}
			for i := start; i < end; i++ {
				out = append(out, i)
			}
			continue
		}

		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(internalerr.ErrInvalidInput, "failed to parse indices %q", expr)
		}
		out = append(out, i)
	}
	return out, nil
}
