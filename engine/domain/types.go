// Package domain defines core types, constants, and validation for the
// podsage pipeline. It acts as the validation gate at pipeline entry points.
package domain

// Defaults for the tunable knobs exposed by the CLIs.
const (
	// DefaultChunkSize is the chunk budget in words (~1.3 LLM tokens per word).
	DefaultChunkSize = 500
	// DefaultTopK is how many chunks a query retrieves when unspecified.
	DefaultTopK = 10
	// DefaultCitationCap limits how many retrieved chunks become citations.
	DefaultCitationCap = 5
	// SnippetLen is the citation snippet length in characters, before the
	// ellipsis.
	SnippetLen = 200
	// Ellipsis terminates every citation snippet, even short ones.
	Ellipsis = "..."
)

// DocumentMeta is the structured front-matter record of one episode.
// Missing keys get explicit defaults rather than surviving as loose map
// lookups: Unknown for guest/title, empty string for the link.
type DocumentMeta struct {
	Guest       string `json:"guest" yaml:"guest"`
	Title       string `json:"title" yaml:"title"`
	YouTubeURL  string `json:"youtube_url" yaml:"youtube_url"`
	PublishDate string `json:"publish_date" yaml:"publish_date"`
	Folder      string `json:"episode_folder" yaml:"-"`
}

// Document is one transcript: front-matter metadata plus free-text body.
// Read once at ingestion time, immutable thereafter.
type Document struct {
	Meta DocumentMeta
	Body string
	Path string
}

// Chunk is a contiguous slice of a Document body sized to the word budget.
// ID follows {guest}_{document-ordinal}_{chunk-ordinal} and doubles as the
// index primary key, so re-ingestion overwrites rather than duplicates.
type Chunk struct {
	ID       string
	Text     string
	Index    int
	Meta     DocumentMeta
	Speakers string
}

// Citation is the display projection of a retrieved chunk. Derived via
// NewCitation, never constructed independently.
type Citation struct {
	Guest      string `json:"guest"`
	Title      string `json:"title"`
	YouTubeURL string `json:"youtube_url"`
	Folder     string `json:"episode_folder"`
	Snippet    string `json:"text_snippet"`
}

// NewCitation projects a retrieved chunk's metadata and text into a Citation.
// The snippet is the first SnippetLen characters, never cut mid-rune; the
// ellipsis is always appended.
func NewCitation(meta DocumentMeta, text string) Citation {
	snippet := text
	if r := []rune(text); len(r) > SnippetLen {
		snippet = string(r[:SnippetLen])
	}
	return Citation{
		Guest:      meta.Guest,
		Title:      meta.Title,
		YouTubeURL: meta.YouTubeURL,
		Folder:     meta.Folder,
		Snippet:    snippet + Ellipsis,
	}
}

// QueryResult is the complete output of one ask invocation. NSources counts
// every retrieved chunk used as context; Citations is capped separately, so
// the two diverge when k exceeds the citation cap.
type QueryResult struct {
	Query     string     `json:"query"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	NSources  int        `json:"n_sources"`
}
