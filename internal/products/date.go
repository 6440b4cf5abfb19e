package products

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

var errBadDate = errors.New("must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")

// Date accepts either a calendar date ("2026-03-01") or an RFC 3339
// timestamp, as sent by HTML date inputs and API clients respectively.
type Date struct{ time.Time }

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errBadDate
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errBadDate
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}
