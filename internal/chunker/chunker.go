package chunker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"chat-rag/internal/config"
	"chat-rag/internal/filestore"
	"chat-rag/internal/models"
)

const (
	maxStructureDepth = 3
	maxStructureKeys  = 5
	maxJSONSample     = 3000
)

// Chunker splits parsed file content into typed chunk contents.
type Chunker struct {
	chunkSize       int
	chunkOverlap    int
	maxSampleRows   int
	sampleBatchSize int
}

func New(cfg *config.Config) *Chunker {
	return &Chunker{
		chunkSize:       cfg.RAG.ChunkSize,
		chunkOverlap:    cfg.RAG.ChunkOverlap,
		maxSampleRows:   cfg.RAG.MaxSampleRows,
		sampleBatchSize: cfg.RAG.SampleBatchSize,
	}
}

// Chunk turns one file's content into an ordered chunk sequence.
func (c *Chunker) Chunk(content *filestore.Content, fileName string) ([]models.ChunkContent, error) {
	var chunks []models.ChunkContent
	switch content.Type {
	case models.FileTypeCSV:
		chunks = c.chunkSheet(content.Sheets[0], fileName, false)
	case models.FileTypeExcel:
		for _, sheet := range content.Sheets {
			chunks = append(chunks, c.chunkSheet(sheet, fileName, true)...)
		}
	case models.FileTypeJSON:
		chunks = c.chunkJSON(content.JSON, fileName)
	case models.FileTypeText, models.FileTypeMarkdown:
		chunks = c.chunkText(content.Text)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, content.Type)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no content extracted from %s", models.ErrExtractionFailure, fileName)
	}
	return chunks, nil
}

// chunkSheet emits columns, summary and batched sample_data chunks for one
// tabular sheet. Spreadsheet sheets get a leading sheet_info chunk.
func (c *Chunker) chunkSheet(sheet filestore.Sheet, fileName string, withSheetInfo bool) []models.ChunkContent {
	var chunks []models.ChunkContent

	sheetMeta := func(m map[string]string) map[string]string {
		if sheet.Name != "" {
			m[models.MetaSheetName] = sheet.Name
		}
		return m
	}

	if withSheetInfo {
		chunks = append(chunks, models.ChunkContent{
			Type: models.ChunkSheetInfo,
			Content: fmt.Sprintf("Sheet '%s' in %s: %d rows, %d columns",
				sheet.Name, fileName, len(sheet.Rows), len(sheet.Header)),
			Metadata: sheetMeta(map[string]string{
				"total_rows":    strconv.Itoa(len(sheet.Rows)),
				"total_columns": strconv.Itoa(len(sheet.Header)),
			}),
		})
	}

	chunks = append(chunks, models.ChunkContent{
		Type:    models.ChunkColumns,
		Content: fmt.Sprintf("Columns in %s: %s", fileName, strings.Join(sheet.Header, ", ")),
		Metadata: sheetMeta(map[string]string{
			"total_columns": strconv.Itoa(len(sheet.Header)),
			"total_rows":    strconv.Itoa(len(sheet.Rows)),
		}),
	})

	chunks = append(chunks, models.ChunkContent{
		Type: models.ChunkSummary,
		Content: fmt.Sprintf("Data summary for %s: %d rows, %d columns. File contains structured tabular data.",
			fileName, len(sheet.Rows), len(sheet.Header)),
		Metadata: sheetMeta(map[string]string{
			"total_rows":    strconv.Itoa(len(sheet.Rows)),
			"total_columns": strconv.Itoa(len(sheet.Header)),
		}),
	})

	sampleRows := sheet.Rows
	if len(sampleRows) > c.maxSampleRows {
		sampleRows = sampleRows[:c.maxSampleRows]
	}

	for start := 0; start < len(sampleRows); start += c.sampleBatchSize {
		end := min(start+c.sampleBatchSize, len(sampleRows))
		batch := rowsToRecords(sheet.Header, sampleRows[start:end])
		serialized, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			continue
		}
		chunks = append(chunks, models.ChunkContent{
			Type: models.ChunkSampleData,
			Content: fmt.Sprintf("Sample data from %s (rows %d-%d):\n%s",
				fileName, start+1, end, serialized),
			Metadata: sheetMeta(map[string]string{
				models.MetaRowStart: strconv.Itoa(start + 1),
				models.MetaRowEnd:   strconv.Itoa(end),
				"sample_size":       strconv.Itoa(end - start),
			}),
		})
	}

	return chunks
}

// chunkText splits free text into overlapping windows, pulling each boundary
// back to the nearest sentence end or newline when that keeps at least half
// of the window.
func (c *Chunker) chunkText(text string) []models.ChunkContent {
	var chunks []models.ChunkContent
	start := 0
	for start < len(text) {
		end := min(start+c.chunkSize, len(text))
		window := text[start:end]

		if end < len(text) {
			lastPeriod := strings.LastIndexByte(window, '.')
			lastNewline := strings.LastIndexByte(window, '\n')
			breakPoint := max(lastPeriod, lastNewline)
			if breakPoint > c.chunkSize/2 {
				window = text[start : start+breakPoint+1]
				end = start + breakPoint + 1
			}
		}

		if trimmed := strings.TrimSpace(window); trimmed != "" {
			chunks = append(chunks, models.ChunkContent{
				Type:    models.ChunkText,
				Content: trimmed,
				Metadata: map[string]string{
					"position_start": strconv.Itoa(start),
					"position_end":   strconv.Itoa(end),
				},
			})
		}

		if end >= len(text) {
			break
		}
		start = end - c.chunkOverlap
	}
	return chunks
}

// chunkJSON emits one structure chunk describing the shape and one truncated
// sample_data chunk with the serialized value.
func (c *Chunker) chunkJSON(tree any, fileName string) []models.ChunkContent {
	chunks := []models.ChunkContent{{
		Type:    models.ChunkStructure,
		Content: fmt.Sprintf("JSON structure in %s: %s", fileName, DescribeStructure(tree, 0)),
		Metadata: map[string]string{
			"data_type": jsonTypeName(tree),
		},
	}}

	serialized, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return chunks
	}
	sample := string(serialized)
	if len(sample) > maxJSONSample {
		cut := maxJSONSample
		for cut > 0 && !utf8.RuneStart(sample[cut]) {
			cut--
		}
		sample = sample[:cut] + "..."
	}
	chunks = append(chunks, models.ChunkContent{
		Type:    models.ChunkSampleData,
		Content: fmt.Sprintf("Sample data from %s:\n%s", fileName, sample),
		Metadata: map[string]string{
			"data_type": jsonTypeName(tree),
		},
	})
	return chunks
}

// DescribeStructure renders a depth-bounded description of a JSON value.
func DescribeStructure(obj any, depth int) string {
	if depth >= maxStructureDepth {
		return "..."
	}
	switch v := obj.(type) {
	case map[string]any:
		if len(v) == 0 {
			return "empty object"
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		// map iteration order is random; keep the description stable
		sort.Strings(keys)
		if len(keys) > maxStructureKeys {
			keys = keys[:maxStructureKeys]
		}
		return fmt.Sprintf("object with keys: %s", strings.Join(keys, ", "))
	case []any:
		if len(v) == 0 {
			return "empty array"
		}
		return fmt.Sprintf("array with %d items", len(v))
	default:
		return jsonTypeName(obj)
	}
}

func jsonTypeName(obj any) string {
	switch obj.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}

// rowsToRecords pairs each row with the header so samples serialize as
// column:value records.
func rowsToRecords(header []string, rows [][]string) []map[string]string {
	records := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			} else {
				record[col] = ""
			}
		}
		records = append(records, record)
	}
	return records
}
