package models

// Snapshot statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Snapshot is the combined filesystem and repository view returned by the
// status endpoint.
type Snapshot struct {
	Status    string              `json:"status"`
	Version   string              `json:"version,omitempty"`
	Message   string              `json:"message,omitempty"`
	Folders   []string            `json:"folders,omitempty"`
	Content   map[string][]string `json:"content,omitempty"`
	Git       *RepoState          `json:"git,omitempty"`
	Timestamp float64             `json:"timestamp,omitempty"`
}
