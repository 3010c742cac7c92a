package reports

import "time"

// Report is the finished product of an analysis: the generated markdown plus
// the rendered files in the object store. A report row exists only for
// analyses that completed.
type Report struct {
	ID         string            `json:"id"`
	AnalysisID string            `json:"analysisId"`
	UserID     string            `json:"userId"`
	Title      string            `json:"title"`
	Markdown   string            `json:"markdown"`
	Area       string            `json:"area"`
	ReportType string            `json:"reportType"`
	Language   string            `json:"language"`
	FileKeys   map[string]string `json:"fileKeys"` // format -> object store key
	CreatedAt  time.Time         `json:"createdAt"`
}

// Formats lists the formats that rendered successfully, in a stable order.
func (r Report) Formats(order []string) []string {
	var out []string
	for _, f := range order {
		if _, ok := r.FileKeys[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
