package domain

import "time"

// Box is a physical storage unit. Occupied mirrors whether an active rental
// references the box and is only written by the occupancy engine.
type Box struct {
	ID                int32     `json:"id"`
	Number            int32     `json:"number"`
	MonthlyPriceCents int64     `json:"monthlyPriceCents"`
	Occupied          bool      `json:"occupied"`
	CreatedOn         time.Time `json:"createdOn"`
}

// BoxDrift describes a box whose occupied flag disagrees with its active rentals.
type BoxDrift struct {
	BoxID         int32 `json:"boxId"`
	Number        int32 `json:"number"`
	Occupied      bool  `json:"occupied"`
	ActiveRentals int32 `json:"activeRentals"`
}
