package orders

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Numeric keeps the raw JSON of a numeric request field. Numbers and numeric
// strings ("5") are both accepted; anything else fails validation for that
// field rather than the whole body.
type Numeric []byte

func (n *Numeric) UnmarshalJSON(b []byte) error {
	*n = append((*n)[:0], b...)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if len(n) == 0 {
		return []byte("null"), nil
	}
	return n, nil
}

func (n Numeric) text() (s string, quoted bool) {
	b := bytes.TrimSpace(n)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err == nil {
			return strings.TrimSpace(s), true
		}
	}
	return string(b), false
}

// blank reports an empty string, which clients send for an unfilled input.
func (n *Numeric) blank() bool {
	if n == nil {
		return true
	}
	s, quoted := n.text()
	return quoted && s == ""
}

// Float parses the value. Non-finite results are rejected.
func (n Numeric) Float() (float64, bool) {
	s, _ := n.text()
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
