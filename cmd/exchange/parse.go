package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"exam_exchange/internal/examdate"
)

// ParseIDArg parses a positive row id.
func ParseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid advert id %q", arg)
	}
	return id, nil
}

// parseDates parses YYYY-MM-DD arguments. Comma separated values are split.
func parseDates(args []string) ([]time.Time, error) {
	var out []time.Time
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := examdate.ParseCanonicalDate(part)
			if err != nil {
				return nil, fmt.Errorf("invalid date %q: %w", part, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}
