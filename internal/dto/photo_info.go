package dto

import (
	"encoding/json"
	"time"
)

// PhotoInfo is one stored measurement record in the gallery listing.
type PhotoInfo struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Date         time.Time `json:"date"`
	TimeOfDay    time.Time `json:"timeOfDay"`
	FishFound    bool      `json:"fishFound"`
	LengthMeters float64   `json:"lengthMeters"`
	DepthWidth   int       `json:"depthWidth"`
	DepthHeight  int       `json:"depthHeight"`
}

// MarshalJSON formats the capture date and time of day the way the gallery shows them.
func (p PhotoInfo) MarshalJSON() ([]byte, error) {
	type Alias PhotoInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      p.Date.Format("02-01-2006"),
		TimeOfDay: p.TimeOfDay.Format("15:04"),
		Alias:     (Alias)(p),
	})
}
