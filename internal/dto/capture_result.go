package dto

// CaptureResult reports one capture and its measurement.
type CaptureResult struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	RequestID    int64   `json:"requestId"`
	RecordID     int64   `json:"recordId,omitempty"`
	FishFound    bool    `json:"fishFound"`
	LengthMeters float32 `json:"lengthMeters"`
	Length       string  `json:"length,omitempty"`
	Image        string  `json:"image,omitempty"`
}
