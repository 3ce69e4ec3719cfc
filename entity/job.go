package entity

import (
	"fmt"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// DerivationJob asks for one resized variant of an uploaded original.
type DerivationJob struct {
	ID         uuid.UUID   `json:"job_id"`
	Profile    CallerClass `json:"profile"`
	Container  string      `json:"container_name"`
	Folder     string      `json:"folder_name"`
	ObjectName string      `json:"name"`
	Resolution Resolution  `json:"resolution"`
}

// NewDerivationJob derives the job id from the variant path so that
// re-dispatching the same variant yields the same key.
func NewDerivationJob(profile CallerClass, container, folder, objectName string, resolution Resolution) DerivationJob {
	key := fmt.Sprintf("%s/%s/%s", container, folder, resolution)
	return DerivationJob{
		ID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)),
		Profile:    profile,
		Container:  container,
		Folder:     folder,
		ObjectName: objectName,
		Resolution: resolution,
	}
}

// JobState is what a job handle resolves to.
type JobState struct {
	JobID      uuid.UUID  `json:"job_id"`
	Status     JobStatus  `json:"status"`
	Resolution Resolution `json:"resolution"`
	Error      string     `json:"error,omitempty"`
	UpdatedAt  int64      `json:"updated_at"`
}
