package domain

import "time"

type Rental struct {
	ID        int32      `json:"id"`
	ClientID  int32      `json:"clientId"`
	BoxID     int32      `json:"boxId"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
	Active    bool       `json:"active"`
	Client    *Client    `json:"client,omitempty"` // Populated by list queries
	Box       *Box       `json:"box,omitempty"`    // Populated by list and summary queries
}

// DeletePolicy decides what happens to a box when one of its rentals is deleted.
type DeletePolicy string

const (
	// DeletePolicyReleaseIfActive frees the box only when the deleted rental was active.
	DeletePolicyReleaseIfActive DeletePolicy = "release_if_active"
	// DeletePolicyReleaseAlways frees the box regardless of the deleted rental's state.
	DeletePolicyReleaseAlways DeletePolicy = "release_always"
)

func (p DeletePolicy) Valid() bool {
	return p == DeletePolicyReleaseIfActive || p == DeletePolicyReleaseAlways
}
