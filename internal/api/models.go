// internal/api/models.go

package api

import (
	"time"

	"github.com/abgandar/trackstats/internal/database"
	"github.com/abgandar/trackstats/internal/track"
	"github.com/abgandar/trackstats/internal/units"
)

// UserResponse is the DTO for a user's public profile.
// It's carefully structured to only expose safe and necessary data.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// toUserResponse is a "mapper" function that converts our internal database model
// into the public-facing UserResponse DTO.
func toUserResponse(user *database.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

// TrackResponse is the DTO for one stored track. The raw aggregate travels
// as-is (optional fields render as null); the formatted summary strings save
// the frontend from re-implementing unit conversion.
type TrackResponse struct {
	ID         int64                `json:"id"`
	Name       string               `json:"name"`
	UploadedAt time.Time            `json:"uploadedAt"`
	Stats      track.AggregateStats `json:"stats"`
	Summary    TrackSummary         `json:"summary"`
}

// TrackSummary holds the human-readable rendering of the headline numbers.
type TrackSummary struct {
	Distance   string `json:"distance"`
	TotalTime  string `json:"totalTime"`
	MovingTime string `json:"movingTime"`
	Gain       string `json:"gain"`
	Loss       string `json:"loss"`
	MaxSpeed   string `json:"maxSpeed,omitempty"`
}

// toTrackResponse maps a database track to its DTO, formatting the summary
// in the requested unit system.
func toTrackResponse(t *database.Track, sys units.System) TrackResponse {
	summary := TrackSummary{
		Distance:   units.FormatDistance(t.Stats.TotalDistance, sys),
		TotalTime:  units.FormatDuration(t.Stats.TotalDuration),
		MovingTime: units.FormatDuration(t.Stats.MovingDuration),
		Gain:       units.FormatElevation(t.Stats.ElevationGain, sys),
		Loss:       units.FormatElevation(t.Stats.ElevationLoss, sys),
	}
	if t.Stats.MaxVelocity.Valid {
		summary.MaxSpeed = units.FormatSpeed(t.Stats.MaxVelocity.Value, sys)
	}

	return TrackResponse{
		ID:         t.ID,
		Name:       t.Name,
		UploadedAt: t.UploadedAt,
		Stats:      t.Stats,
		Summary:    summary,
	}
}

// toTrackResponseList is a helper to convert a slice of database tracks.
func toTrackResponseList(tracks []*database.Track, sys units.System) []TrackResponse {
	responseList := make([]TrackResponse, len(tracks))
	for i, t := range tracks {
		responseList[i] = toTrackResponse(t, sys)
	}
	return responseList
}
