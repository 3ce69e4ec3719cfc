package entity

import "fmt"

type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
	Resolution4K    Resolution = "4k"
)

type Dimension struct {
	Width  int
	Height int
}

var resolutionDimensions = map[Resolution]Dimension{
	Resolution720p:  {Width: 1280, Height: 720},
	Resolution1080p: {Width: 1920, Height: 1080},
	Resolution4K:    {Width: 3840, Height: 2160},
}

// Resolutions returns the closed set in its fixed order.
func Resolutions() []Resolution {
	return []Resolution{Resolution720p, Resolution1080p, Resolution4K}
}

func ParseResolution(value string) (Resolution, error) {
	r := Resolution(value)
	if _, ok := resolutionDimensions[r]; !ok {
		return "", NewValidationError("resolution", fmt.Sprintf("unsupported resolution %q, allowed: 720p, 1080p, 4k", value))
	}
	return r, nil
}

func (r Resolution) Dimension() Dimension {
	return resolutionDimensions[r]
}

func (r Resolution) String() string {
	return string(r)
}
