package database

// Paper is a fetched arXiv paper as stored.
type Paper struct {
	ArxivID    string
	Title      string
	Abstract   string
	Authors    []string
	Categories []string
	Published  string // YYYY-MM-DD or empty
	FetchedAt  *string
}

// LLMScore is one cached LLM relevance judgment. Rows are keyed by
// arXiv id; Fingerprint records the keyword/description inputs the
// score was produced under, and a row whose fingerprint no longer
// matches the current inputs is treated as absent.
type LLMScore struct {
	ArxivID     string
	Fingerprint string
	Score       int
	Keywords    []string
	Summary     string
	ScoredAt    *string
}

// Digest is one stored ranking digest for a run period.
type Digest struct {
	ID           int64
	PeriodID     string
	RankMode     string
	BodyMarkdown string
	PaperCount   int
	LLMCount     int
	GeneratedAt  *string
}
