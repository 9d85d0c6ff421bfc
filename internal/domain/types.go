package domain

import (
	"fmt"
	"strings"
)

// ID is used across domain entities.
type ID int64

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// Normalize clamps paging to sane bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// User roles.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// ActorSystem marks transitions made by scheduled jobs.
const ActorSystem = "system"

// Actor is whoever is acting on a reservation.
type Actor struct {
	UserID   ID
	Role     string
	VendorID ID
}

// SystemActor is used by the scheduler.
var SystemActor = Actor{Role: ActorSystem}

func (a Actor) IsSystem() bool { return a.Role == ActorSystem }

// String is the value stored in the status event log.
func (a Actor) String() string {
	if a.IsSystem() {
		return ActorSystem
	}
	return fmt.Sprintf("%s:%d", strings.ToLower(a.Role), a.UserID)
}
