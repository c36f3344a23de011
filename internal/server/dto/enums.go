package dto

import (
	"encoding/json"
	"fmt"
)

// MangaState is the publication lifecycle of a manga.
type MangaState string

const (
	StateOngoing    MangaState = "ONGOING"
	StateFinished   MangaState = "FINISHED"
	StateAbandoned  MangaState = "ABANDONED"
	StatePaused     MangaState = "PAUSED"
	StateUpcoming   MangaState = "UPCOMING"
	StateRestricted MangaState = "RESTRICTED"
)

// ParseMangaState returns the state named by s. Unknown names yield
// StateOngoing and ok == false.
func ParseMangaState(s string) (state MangaState, ok bool) {
	switch MangaState(s) {
	case StateOngoing, StateFinished, StateAbandoned, StatePaused, StateUpcoming, StateRestricted:
		return MangaState(s), true
	}
	return StateOngoing, false
}

func (s *MangaState) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, ok := ParseMangaState(raw)
	if !ok {
		return fmt.Errorf("unknown manga state %q", raw)
	}
	*s = parsed
	return nil
}

// ContentRating classifies how explicit a manga is.
type ContentRating string

const (
	RatingSafe       ContentRating = "SAFE"
	RatingSuggestive ContentRating = "SUGGESTIVE"
	RatingAdult      ContentRating = "ADULT"
)

// ParseContentRating returns the rating named by s. Unknown names yield
// RatingSafe and ok == false.
func ParseContentRating(s string) (rating ContentRating, ok bool) {
	switch ContentRating(s) {
	case RatingSafe, RatingSuggestive, RatingAdult:
		return ContentRating(s), true
	}
	return RatingSafe, false
}

func (r *ContentRating) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, ok := ParseContentRating(raw)
	if !ok {
		return fmt.Errorf("unknown content rating %q", raw)
	}
	*r = parsed
	return nil
}
