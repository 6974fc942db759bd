// Package model defines the core domain types shared across the research and
// simulation pipelines.
package model

// Severity is the closed set of pain-point severity levels.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ValidSeverity reports whether s is a member of the closed severity set.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// SourceName identifies a data-source backend.
type SourceName string

const (
	SourceAuto        SourceName = "auto"
	SourceYouTube     SourceName = "youtube"
	SourceReddit      SourceName = "reddit"
	SourceHackerNews  SourceName = "hackernews"
	SourceProductHunt SourceName = "producthunt"
	SourceDemo        SourceName = "demo"
)

// Comment is a single user comment attached to a SearchItem.
type Comment struct {
	Text   string `json:"text"`
	Score  int    `json:"score"`
	Author string `json:"author"`
}

// SearchItem is one post/video/story returned by a data source, normalized
// to a provider-independent shape.
type SearchItem struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	Channel     string    `json:"channel"` // subreddit, YouTube channel, "HackerNews", ...
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	CreatedUnix int64     `json:"created_unix"`
	Comments    []Comment `json:"comments"`
}

// PainPoint is a structured complaint extracted from user-generated text.
// Immutable once produced by extraction.
type PainPoint struct {
	Description string   `json:"description"`
	Quote       string   `json:"quote"`
	Severity    Severity `json:"severity"`
	SourceURL   string   `json:"source_url"`
	Frequency   int      `json:"frequency"`
}

// ResearchRequest is the input for the research pipeline.
type ResearchRequest struct {
	ProblemStatement string     `json:"problem_statement"`
	TargetUsers      string     `json:"target_users"`
	Source           SourceName `json:"source,omitempty"`
}

// ResearchResponse is the output of the research pipeline.
type ResearchResponse struct {
	PainPoints            []PainPoint `json:"pain_points"`
	Source                string      `json:"source"`
	TotalPostsAnalyzed    int         `json:"total_posts_analyzed"`
	TotalCommentsAnalyzed int         `json:"total_comments_analyzed"`
}
