package models

// Bike statuses.
const (
	BikeAvailable   = "available"
	BikeMaintenance = "maintenance"
	BikeRetired     = "retired"
)

// Bike is a rentable motorbike owned by a vendor.
type Bike struct {
	ID          int64  `json:"id"`
	VendorID    int64  `json:"vendorId"`
	Name        string `json:"name"`
	PlateNumber string `json:"plateNumber"`
	HourlyPrice int64  `json:"hourlyPrice"`
	DailyPrice  int64  `json:"dailyPrice"`
	Status      string `json:"status"`
}

// BikeFilter narrows the catalog. Zero values mean "any".
type BikeFilter struct {
	VendorID int64
	Status   string
	Query    string
	Page     int
	PageSize int
}

// ValidBikeStatus reports whether s is one of the bike statuses.
func ValidBikeStatus(s string) bool {
	switch s {
	case BikeAvailable, BikeMaintenance, BikeRetired:
		return true
	}
	return false
}
