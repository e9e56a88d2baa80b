package orders

import "fmt"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var known = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusShipped:   true,
	StatusDelivered: true,
	StatusCancelled: true,
}

// ParseStatus validates membership only. Admin updates may move an order to
// any known status; the single enforced transition is PENDING -> CANCELLED on
// the cancel path, which is also the only path that touches inventory.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !known[st] {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidOrderRequest, s)
	}
	return st, nil
}

// Cancellable reports whether the buyer cancel path may run.
func (s Status) Cancellable() bool { return s == StatusPending }
