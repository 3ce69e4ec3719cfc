package entity

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

type Operation string

const (
	OperationWrite Operation = "write"
	OperationRead  Operation = "read"
)

// SignedCapability is a bearer URL scoped to one operation on one object.
type SignedCapability struct {
	URL       string    `json:"url"`
	Operation Operation `json:"operation"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ObjectLocation is the decomposition of a capability or direct URL:
// {base}/{container}/{folder}/{object}.
type ObjectLocation struct {
	BaseURL    string `json:"storage_account_url"`
	Container  string `json:"container_id"`
	Folder     string `json:"folder_name"`
	ObjectName string `json:"blob_name"`
}

// ParseObjectLocation accepts both signed and direct URLs; the query string is
// dropped.
func ParseObjectLocation(raw string) (ObjectLocation, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ObjectLocation{}, NewValidationError("url", fmt.Sprintf("%q is not an absolute URL", raw))
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 3 || segments[0] == "" || segments[1] == "" || segments[2] == "" {
		return ObjectLocation{}, NewValidationError("url", "expected {container}/{folder}/{object} path")
	}

	return ObjectLocation{
		BaseURL:    u.Scheme + "://" + u.Host,
		Container:  segments[0],
		Folder:     segments[1],
		ObjectName: segments[2],
	}, nil
}

func (l ObjectLocation) ObjectPath() string {
	return path.Join(l.Folder, l.ObjectName)
}

// VariantURL is the path convention for a derived variant next to the original.
func (l ObjectLocation) VariantURL(resolution Resolution) string {
	return fmt.Sprintf("%s/%s/%s/%s", l.BaseURL, l.Container, l.Folder, VariantObjectName(l.ObjectName, resolution))
}

func VariantObjectName(originalObjectName string, resolution Resolution) string {
	return fmt.Sprintf("%s.%s", resolution, Extension(originalObjectName))
}

// Extension returns the lower-cased extension without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// NormalizeObjectName lower-cases the extension, matching how uploaded
// originals are named.
func NormalizeObjectName(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, ext) + "." + Extension(name)
}

var allowedImageExtensions = map[string]bool{
	"png":  true,
	"jpeg": true,
}

func ValidateImageName(name string) error {
	if !allowedImageExtensions[Extension(name)] {
		return NewValidationError("name", fmt.Sprintf("invalid file extension for %s. Allowed extensions are: .jpeg, .png", name))
	}
	return nil
}
