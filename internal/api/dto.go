package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chefknight/internal/journal"
	"github.com/starford/chefknight/internal/wikiservice"
)

// MaxMessageLen bounds commit messages accepted by POST /api/push.
const MaxMessageLen = 500

// PushRequest is the optional JSON body of POST /api/push. Either field may
// carry the commit message.
type PushRequest struct {
	Msg     string `json:"msg,omitempty" example:"Add hero"`
	Message string `json:"message,omitempty" example:"Add hero"`
}

// Text returns the commit message, preferring Msg.
func (p PushRequest) Text() string {
	if p.Msg != "" {
		return p.Msg
	}
	return p.Message
}

// Validate checks message lengths.
func (p PushRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Msg, validation.RuneLength(0, MaxMessageLen)),
		validation.Field(&p.Message, validation.RuneLength(0, MaxMessageLen)),
	)
}

// CategoryListResponse wraps GET /api/categories.
type CategoryListResponse struct {
	Categories []wikiservice.CategorySummary `json:"categories"`
}

// DocumentListResponse wraps GET /api/content/{category}.
type DocumentListResponse struct {
	Category  string   `json:"category" example:"characters"`
	Documents []string `json:"documents"`
}

// HistoryResponse wraps GET /api/history.
type HistoryResponse struct {
	Entries []journal.Entry `json:"entries"`
}
