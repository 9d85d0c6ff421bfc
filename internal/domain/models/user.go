package models

// User is any account that can sign in: customer, vendor staff or admin.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	VendorID     int64  `json:"vendorId,omitempty"`
	Status       string `json:"status"`
}
