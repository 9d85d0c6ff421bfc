// Package status holds the reservation lifecycle table.
package status

import (
	"fmt"
	"strings"
)

// Status is the lifecycle stage of a single reservation.
type Status string

const (
	Pending   Status = "pending"
	Confirmed Status = "confirmed"
	InUse     Status = "in_use"
	Completed Status = "completed"
	Cancelled Status = "cancelled"
	NoShow    Status = "no_show"
)

var all = []Status{Pending, Confirmed, InUse, Completed, Cancelled, NoShow}

// transitions is the complete adjacency list. completed and cancelled are terminal;
// no_show may be re-confirmed after a missed pickup.
var transitions = map[Status][]Status{
	Pending:   {Confirmed, Cancelled},
	Confirmed: {InUse, Cancelled, NoShow},
	InUse:     {Completed},
	Completed: {},
	Cancelled: {},
	NoShow:    {Confirmed},
}

var labels = map[Status]string{
	Pending:   "承認待ち",
	Confirmed: "予約確定",
	InUse:     "利用中",
	Completed: "返却済み",
	Cancelled: "キャンセル",
	NoShow:    "無断キャンセル",
}

// CanTransition reports whether a reservation may move from one status to another.
// Unknown statuses never transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from current. The result is empty
// for terminal or unknown input and is safe for the caller to modify.
func NextStatuses(current Status) []Status {
	next := transitions[current]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Parse normalizes s and returns the matching status.
func Parse(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown reservation status: %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// Label is the display name shown on the dashboards.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) String() string { return string(s) }

// All lists every status in lifecycle order.
func All() []Status {
	out := make([]Status, len(all))
	copy(out, all)
	return out
}

// Table returns a copy of the whole adjacency list.
func Table() map[Status][]Status {
	out := make(map[Status][]Status, len(transitions))
	for from := range transitions {
		out[from] = NextStatuses(from)
	}
	return out
}
