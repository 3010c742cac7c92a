package suggestions

import "time"

// Suggestion statuses. New entries start as new; reviewed and done are
// set by operators.
const (
	StatusNew      = "new"
	StatusReviewed = "reviewed"
	StatusDone     = "done"
)

var validStatuses = map[string]bool{
	StatusNew:      true,
	StatusReviewed: true,
	StatusDone:     true,
}

var validCategories = map[string]bool{
	"feature":     true,
	"ux":          true,
	"integration": true,
	"report":      true,
	"bug":         true,
	"other":       true,
}

// Suggestion is a piece of user feedback about the platform.
type Suggestion struct {
	ID        string
	UserID    string
	Category  string
	Message   string
	Status    string
	CreatedAt time.Time
}
