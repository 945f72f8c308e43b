package dto

// ActionResult is the {success, message} pair returned by control endpoints.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
