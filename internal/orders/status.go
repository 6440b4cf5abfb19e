package orders

import (
	"strings"
)

type Status string

// One enumeration for both status surfaces the frontend exposes. Completed is
// the only value that consumes stock.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled,
}

func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DeductsStock reports whether entering s removes the order quantity from
// on-hand stock.
func (s Status) DeductsStock() bool { return s == StatusCompleted }

// ParseStatus accepts any member of the enumeration, case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus.WithDetails("status", raw).WithDetails("allowed", Statuses())
	}
	return s, nil
}
