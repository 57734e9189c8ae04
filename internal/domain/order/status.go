package order

import "fmt"

// Status is an order's position in the fulfillment lifecycle.
type Status string

const (
	// StatusPending is the initial status set at placement.
	StatusPending Status = "Pending"
	// StatusConfirmed means payment was verified by an operator.
	StatusConfirmed Status = "Confirmed"
	// StatusCompleted means access details were delivered. Terminal.
	StatusCompleted Status = "Completed"
	// StatusCancelled means the order was abandoned or rejected. Terminal.
	StatusCancelled Status = "Cancelled"
)

// transitions is the set of legal forward moves. Terminal states have no
// entries. Self-transitions are handled as no-ops by the service, not here.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseStatus validates an operator-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransitionTo reports whether moving from s to the given status is legal.
func (s Status) CanTransitionTo(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError indicates an operator attempted an illegal
// status move, e.g. reviving a cancelled order.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
