package dto

// PhotosData is a paginated response payload for the photo gallery.
type PhotosData struct {
	Photos      []PhotoInfo `json:"photos"`
	ImagesDir   string      `json:"imagesDir"`
	Where       string      `json:"where,omitempty"`
	Length      int         `json:"length"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	Limit       int         `json:"pageSize"`
}
