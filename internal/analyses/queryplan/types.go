package queryplan

// Tool keys understood by the agent runtime.
const (
	ToolWebSearch = "web_search"
	ToolPubMed    = "pubmed"
	ToolArxiv     = "arxiv"
	ToolFinance   = "finance"
)

// Strategy describes how one tool should be used for this analysis.
type Strategy struct {
	Tool      string
	Priority  int // 1 = most important
	Queries   []string
	Rationale string
}

// Plan is the full output of the optimizer: focus topics, per-tool
// strategies, activation overrides, and the markdown action plan injected
// into the agent prompt.
type Plan struct {
	FocusTopics   []string
	Strategies    []Strategy
	ToolOverrides map[string]bool
	ActionPlanMD  string
	Log           []string
}

// Request carries everything the optimizer looks at. All fields are plain
// values; the optimizer performs no I/O.
type Request struct {
	Objective     string
	Area          string
	Mode          string
	DocumentText  string
	Geolocation   string
	Language      string
	SourceCount   int
	IncludeSearch bool
}
