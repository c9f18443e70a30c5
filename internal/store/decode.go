package store

import (
	"fmt"
	"time"

	"github.com/roach88/nysm/internal/ir"
)

func parseTimestamp(s string) (ir.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return ir.Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ir.Timestamp(t), nil
}

func parseTimespan(s string) (ir.Timespan, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse timespan %q: %w", s, err)
	}
	return ir.Timespan(d), nil
}
