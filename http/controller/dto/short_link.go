package dto

// ShortURLRequestDTO is optional in the body; the url query parameter is
// accepted as well.
type ShortURLRequestDTO struct {
	URL string `json:"url" form:"url"`
}
