package models

// Insights is the structured booking summary produced by the external
// generator for a single year-month. Field names follow the JSON the
// generator is instructed to return; the whole object is replaced on
// every successful upload or refresh.
type Insights struct {
	Date                 string               `json:"date"`
	TotalArrivals        float64              `json:"totalArrivals"`
	ArrivalPercentage    float64              `json:"arrivalPercentage"`
	MemberArrivals       float64              `json:"memberArrivals"`
	GeneralGuestArrivals float64              `json:"generalGuestArrivals"`
	DeparturesToday      float64              `json:"departuresToday"`
	OccupancyRate        float64              `json:"occupancyRate"`
	ADR                  float64              `json:"ADR"`
	GuestBirthdays       []GuestBirthday      `json:"guestBirthdays"`
	AgeGroupSegmentation AgeGroupSegmentation `json:"ageGroupSegmentation"`
	CanceledBookings     CanceledBookings     `json:"canceledBookings"`
	FrequentUnits        []FrequentUnit       `json:"frequentUnits"`
	MonthlyIncome        float64              `json:"monthlyIncome"`
	YearlyIncome         float64              `json:"yearlyIncome"`
}

// GuestBirthday is one entry of the guestBirthdays sequence
type GuestBirthday struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
}

// AgeGroupSegmentation splits guests into age buckets
type AgeGroupSegmentation struct {
	Child  float64 `json:"child"`
	Adult  float64 `json:"adult"`
	Senior float64 `json:"senior"`
}

// CanceledBookings aggregates cancellations for the month
type CanceledBookings struct {
	Count      float64 `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FrequentUnit is one entry of the frequentUnits sequence
type FrequentUnit struct {
	UnitID   string  `json:"unitId"`
	Bookings float64 `json:"bookings"`
}
