package domain

import "time"

// Vehicle is owned by a user. The auth core only reads vehicles, for the
// admin listing.
type Vehicle struct {
	ID             string
	UserID         string
	Manufacturer   string
	Model          string
	Year           int
	VIN            string
	LicensePlate   string
	Color          string
	InitialMileage int
	CurrentMileage int
	ImageFilename  string
	CreatedAt      time.Time
}
