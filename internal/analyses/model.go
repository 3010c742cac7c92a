package analyses

import "time"

// Analysis statuses. pending through generating are active; the rest are
// terminal. searching only occurs when market-reference search is enabled.
const (
	StatusPending    = "pending"
	StatusExtracting = "extracting"
	StatusSearching  = "searching"
	StatusAnalyzing  = "analyzing"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusCancelled  = "cancelled"
)

// statusProgress maps a status to the percentage reported by the poll endpoint.
var statusProgress = map[string]int{
	StatusPending:    5,
	StatusExtracting: 20,
	StatusSearching:  35,
	StatusAnalyzing:  55,
	StatusGenerating: 80,
	StatusCompleted:  100,
	StatusError:      100,
	StatusCancelled:  100,
}

// Progress returns the poll progress percentage for a status.
func Progress(status string) int {
	if p, ok := statusProgress[status]; ok {
		return p
	}
	return 0
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// LogLine is one entry of the append-only processing trail.
type LogLine struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// Analysis represents one report-generation job.
type Analysis struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Mode            Mode       `json:"mode"`
	Objective       string     `json:"objective"`
	Area            string     `json:"area"`
	ReportType      string     `json:"reportType"`
	Language        string     `json:"language"`
	Geolocation     string     `json:"geolocation,omitempty"`
	SearchScope     string     `json:"searchScope,omitempty"`
	SourceCount     int        `json:"sourceCount"`
	IncludeSearch   bool       `json:"includeSearch"`
	IncludeImages   bool       `json:"includeImages"`
	DocumentID      string     `json:"documentId,omitempty"` // primary document; empty for free_form
	DocumentIDs     []string   `json:"documentIds,omitempty"`
	Status          string     `json:"status"`
	ErrorCode       string     `json:"errorCode,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	CancelRequested bool       `json:"cancelRequested,omitempty"`
	Log             []LogLine  `json:"log,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AllDocumentIDs returns the primary document plus the additional ones,
// primary first, without duplicates.
func (a Analysis) AllDocumentIDs() []string {
	var out []string
	seen := map[string]bool{}
	if a.DocumentID != "" {
		out = append(out, a.DocumentID)
		seen[a.DocumentID] = true
	}
	for _, id := range a.DocumentIDs {
		if id != "" && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}
