package model

import "time"

// EmptyAudio is stored in Track.Audio and Stem.Audio until a file is uploaded.
const EmptyAudio = "Empty"

// Collection names in the document store.
const (
	TracksCollection   = "tracks"
	StemsCollection    = "stems"
	CommentsCollection = "comments"
)

// Genre is one of the fixed track genres.
type Genre string

const (
	GenreHouse     Genre = "House"
	GenreTrap      Genre = "Trap"
	GenreDubstep   Genre = "Dubstep"
	GenreHardstyle Genre = "Hardstyle"
	GenreTechno    Genre = "Techno"
)

// Genres lists every accepted genre value.
var Genres = []Genre{GenreHouse, GenreTrap, GenreDubstep, GenreHardstyle, GenreTechno}

// Valid reports whether g is one of Genres.
func (g Genre) Valid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

// Track is a top-level audio work owned by a user.
type Track struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Audio     string    `json:"audio"` // EmptyAudio or /uploads/track/{id}-{filename}
	Name      string    `json:"name"`
	Genre     []Genre   `json:"genre"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of t.
func (t Track) Clone() Track {
	c := t
	if t.Genre != nil {
		c.Genre = append(make([]Genre, 0, len(t.Genre)), t.Genre...)
	}
	return c
}
