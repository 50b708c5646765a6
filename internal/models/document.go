package models

// Document is a parsed markdown file within a category directory.
type Document struct {
	Category string         `json:"category"`
	Stem     string         `json:"stem"`
	Path     string         `json:"path"` // relative to the content root, forward slashes
	Metadata map[string]any `json:"metadata"`
	Body     string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Links    []string       `json:"links,omitempty"`
	Checksum string         `json:"-"`
	HTML     string         `json:"html,omitempty"`
}
