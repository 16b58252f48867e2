package models

// FileType is the declared type of an uploaded file.
type FileType string

const (
	FileTypeCSV      FileType = "csv"
	FileTypeExcel    FileType = "xlsx"
	FileTypeJSON     FileType = "json"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "md"
	FileTypePDF      FileType = "pdf"
	FileTypeDOCX     FileType = "docx"
)

// ChunkType tags what kind of content a chunk carries.
type ChunkType string

const (
	ChunkColumns    ChunkType = "columns"
	ChunkSummary    ChunkType = "summary"
	ChunkSampleData ChunkType = "sample_data"
	ChunkSheetInfo  ChunkType = "sheet_info"
	ChunkStructure  ChunkType = "structure"
	ChunkText       ChunkType = "text_chunk"
)

// Metadata keys shared between chunker, store backends and retriever.
// Values are strings so they round-trip through any metadata store.
const (
	MetaFileID     = "file_id"
	MetaFileName   = "file_name"
	MetaFileType   = "file_type"
	MetaChunkType  = "chunk_type"
	MetaChunkIndex = "chunk_index"
	MetaSessionID  = "session_id"
	MetaSheetName  = "sheet_name"
	MetaRowStart   = "row_start"
	MetaRowEnd     = "row_end"
	MetaUploadedAt = "upload_timestamp"
)

// Chunk is one bounded piece of extracted file content plus metadata and,
// once ingested, its embedding.
type Chunk struct {
	ChunkID    string
	Content    string
	Type       ChunkType
	Metadata   map[string]string
	Embedding  []float32
	SourceFile string
	ChunkIndex int
}

// ChunkContent is what the chunker emits before IDs and embeddings are
// attached: content, its type, and type-specific metadata.
type ChunkContent struct {
	Content  string
	Type     ChunkType
	Metadata map[string]string
}
