package model

import "time"

// Stem is an individual audio layer belonging to one Track.
type Stem struct {
	ID        string    `json:"id"`
	Audio     string    `json:"audio"` // EmptyAudio or /uploads/stem/{id}-{filename}
	User      string    `json:"user"`
	Name      string    `json:"name"`
	TrackID   string    `json:"trackId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
