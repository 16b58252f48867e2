package models

// SearchResult is one ranked retrieval hit.
type SearchResult struct {
	Chunk      Chunk
	Score      float32
	SourceFile string
	Preview    string
}

// Source attributes one retrieved chunk inside a QuestionContext.
type Source struct {
	FileName       string  `json:"file_name"`
	ChunkType      string  `json:"chunk_type"`
	RelevanceScore float32 `json:"relevance_score"`
	Preview        string  `json:"content_preview"`
}

// QuestionContext is the unified result handed to the generator: assembled
// context text, source attributions, and whether the heuristic fallback
// produced it.
type QuestionContext struct {
	Success          bool
	Context          string
	Sources          []Source
	Message          string
	AverageRelevance float32
	UsedFallback     bool
}

// FileAnalysis is the heuristic analyzer's per-file verdict.
type FileAnalysis struct {
	FileName       string
	FileType       FileType
	RelevanceScore int
	FoundData      FoundData
	Summary        string
}

// FoundData holds the structured evidence the analyzer collected from one file.
type FoundData struct {
	TotalRows       int
	Columns         []string
	MatchingColumns []string
	MatchingData    []DataMatch
	FilteredRows    []map[string]string
	FilteredCount   int
	JSONMatches     []JSONMatch
	TextMatches     []TextMatch
}

// DataMatch records cell matches for one (term, column) pair.
type DataMatch struct {
	SearchTerm string
	Column     string
	Matches    int
	SampleRows []map[string]string
}

// JSONMatch records one key or value hit inside a JSON tree.
type JSONMatch struct {
	Path       string
	Kind       string // key_match or value_match
	Key        string
	Value      string
	SearchTerm string
}

// TextMatch records one term occurrence in free text with surrounding context.
type TextMatch struct {
	SearchTerm string
	Position   int
	Context    string
}

// IngestReport is the per-file outcome of an ingestion batch.
type IngestReport struct {
	FileName      string
	Success       bool
	ChunksCreated int
	ContentLength int
	Error         string
}

// SessionStats summarizes what a session currently holds.
type SessionStats struct {
	TotalChunks int
	TotalFiles  int
	PerFile     map[string]int
}

// PromptResponse is the generator's answer together with the sources it saw.
type PromptResponse struct {
	Query   string
	Source  string
	Content string
}
