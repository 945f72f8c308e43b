package dto

// FocusRequest is a tap in normalized device coordinates.
type FocusRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ZoomRequest is one step of a pinch gesture. Phase is began, changed,
// ended or cancelled.
type ZoomRequest struct {
	Scale float64 `json:"scale"`
	Phase string  `json:"phase"`
}
