package domain

import "time"

// Collection names one live-subscribable slice of records.
type Collection string

const (
	CollectionDropoffs   Collection = "dropoffs"
	CollectionReturns    Collection = "returns"
	CollectionProducts   Collection = "products"
	CollectionPartners   Collection = "partners"
	CollectionEmployees  Collection = "employees"
	CollectionAttendance Collection = "attendance"
)

// Collections lists every collection the feed layer serves.
var Collections = []Collection{
	CollectionDropoffs,
	CollectionReturns,
	CollectionProducts,
	CollectionPartners,
	CollectionEmployees,
	CollectionAttendance,
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Seed-only products have an empty ID.
type Product struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Entry is a name-keyed catalog entry used for partners and employees.
type Entry struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Transaction is one line item of a drop-off or return submission.
type Transaction struct {
	ID          string     `json:"id"`
	ProductName string     `json:"product"`
	PartnerName string     `json:"partner"`
	Quantity    int        `json:"quantity"`
	Timestamp   *time.Time `json:"timestamp"`
	OfficerName string     `json:"officer"`
}

type AttendanceStatus string

const (
	StatusActive    AttendanceStatus = "active"
	StatusCompleted AttendanceStatus = "completed"
)

type EventType string

const (
	EventClockIn  EventType = "clock-in"
	EventVisit    EventType = "visit"
	EventClockOut EventType = "clock-out"
)

// JourneyEvent is one entry of an attendance journey. Location, Notes and
// Photo are only set on visit events; Photo is a photo store key and is
// empty once redacted.
type JourneyEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Photo     string    `json:"photo,omitempty"`
}

type AttendanceRecord struct {
	ID           string           `json:"id"`
	EmployeeName string           `json:"employee"`
	ClockInTime  time.Time        `json:"clock_in_time"`
	ClockOutTime *time.Time       `json:"clock_out_time"`
	Status       AttendanceStatus `json:"status"`
	Journey      []JourneyEvent   `json:"journey"`
}

// Active reports whether the record still accepts visits and a clock-out.
func (r *AttendanceRecord) Active() bool {
	return r.Status == StatusActive
}

// Visits returns the visit events of the journey in submission order.
func (r *AttendanceRecord) Visits() []JourneyEvent {
	var visits []JourneyEvent
	for _, ev := range r.Journey {
		if ev.Type == EventVisit {
			visits = append(visits, ev)
		}
	}
	return visits
}

// AdminConfig is the singleton admin gate record.
type AdminConfig struct {
	PasswordHash string
	UpdatedAt    time.Time
}

// Filter narrows transaction history. Zero-valued fields match everything.
// StartDate and EndDate carry a calendar date; the time of day is ignored.
type Filter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Product   string
	Partner   string
	Officer   string
}
