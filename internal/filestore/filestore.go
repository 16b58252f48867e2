package filestore

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chat-rag/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// Sheet is one tabular sheet: header row plus data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Content is what a file reduces to: tabular sheets, a JSON tree, or plain
// text, depending on its declared type.
type Content struct {
	Type   models.FileType
	Sheets []Sheet
	Text   string
	JSON   any
}

// Store yields parsed file content by path and declared type. The engine
// never discovers files itself.
type Store interface {
	Load(path string, fileType models.FileType) (*Content, error)
}

// Local reads files from the local filesystem.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (l *Local) Load(path string, fileType models.FileType) (*Content, error) {
	switch fileType {
	case models.FileTypeCSV:
		return loadCSV(path)
	case models.FileTypeExcel:
		return loadExcel(path)
	case models.FileTypeJSON:
		return loadJSON(path)
	case models.FileTypeText:
		return loadText(path)
	case models.FileTypeMarkdown:
		return loadMarkdown(path)
	case models.FileTypePDF:
		return loadPDF(path)
	case models.FileTypeDOCX:
		return loadDOCX(path)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, fileType)
	}
}

// DetectFileType maps a file name's extension to a FileType.
func DetectFileType(name string) (models.FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return models.FileTypeCSV, nil
	case ".xlsx", ".xlsm":
		return models.FileTypeExcel, nil
	case ".json":
		return models.FileTypeJSON, nil
	case ".txt", ".log":
		return models.FileTypeText, nil
	case ".md":
		return models.FileTypeMarkdown, nil
	case ".pdf":
		return models.FileTypePDF, nil
	case ".docx":
		return models.FileTypeDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFileType, filepath.Ext(name))
	}
}

func loadCSV(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty csv file", models.ErrExtractionFailure)
	}

	sheet := Sheet{Header: records[0]}
	if len(records) > 1 {
		sheet.Rows = records[1:]
	}
	return &Content{Type: models.FileTypeCSV, Sheets: []Sheet{sheet}}, nil
}

func loadExcel(path string) (*Content, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		if len(rows) == 0 {
			continue
		}
		sheet := Sheet{Name: sheetName, Header: rows[0]}
		if len(rows) > 1 {
			sheet.Rows = rows[1:]
		}
		sheets = append(sheets, sheet)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no data", models.ErrExtractionFailure)
	}
	return &Content{Type: models.FileTypeExcel, Sheets: sheets}, nil
}

func loadJSON(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	return &Content{Type: models.FileTypeJSON, JSON: tree}, nil
}

func loadText(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	return &Content{Type: models.FileTypeText, Text: string(data)}, nil
}

// loadMarkdown reduces markdown to plain text by walking the parsed AST, so
// formatting characters never end up inside chunks.
func loadMarkdown(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(data))

	var text strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			text.Write(node.Segment.Value(data))
			if node.SoftLineBreak() || node.HardLineBreak() {
				text.WriteByte('\n')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	return &Content{Type: models.FileTypeText, Text: text.String()}, nil
}

func loadPDF(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
		}
		text.WriteString(pageText)
		text.WriteByte('\n')
	}
	return &Content{Type: models.FileTypeText, Text: text.String()}, nil
}

func loadDOCX(path string) (*Content, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailure, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return &Content{Type: models.FileTypeText, Text: extractDocxText(content)}, nil
}

// extractDocxText pulls the text runs out of the document XML.
func extractDocxText(xmlContent string) string {
	var text strings.Builder
	parts := strings.Split(xmlContent, "<w:t")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		start := strings.Index(part, ">")
		if start < 0 {
			continue
		}
		end := strings.Index(part, "</w:t>")
		if end > start {
			text.WriteString(part[start+1 : end])
			text.WriteByte(' ')
		}
	}
	if text.Len() == 0 {
		return xmlContent
	}
	return text.String()
}
