package orders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const maxDailySequence = 9999

// DayPrefix is the per-day order number prefix, e.g. "ORD-20260115-".
func DayPrefix(t time.Time) string {
	return "ORD-" + t.Format("20060102") + "-"
}

// NextOrderNumber derives the number following last, the greatest number
// already issued under prefix ("" when none has been issued today).
func NextOrderNumber(prefix, last string) (string, error) {
	seq := 1
	if last != "" {
		if !strings.HasPrefix(last, prefix) {
			return "", fmt.Errorf("order number %q outside prefix %q", last, prefix)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("parse order number %q: %w", last, err)
		}
		seq = n + 1
	}
	if seq > maxDailySequence {
		return "", ErrOrderNumbersExhausted.WithDetails("prefix", prefix)
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
