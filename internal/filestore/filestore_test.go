package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-rag/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectFileType(t *testing.T) {
	cases := map[string]models.FileType{
		"data.csv":    models.FileTypeCSV,
		"book.XLSX":   models.FileTypeExcel,
		"macro.xlsm":  models.FileTypeExcel,
		"tree.json":   models.FileTypeJSON,
		"notes.txt":   models.FileTypeText,
		"app.log":     models.FileTypeText,
		"readme.md":   models.FileTypeMarkdown,
		"paper.pdf":   models.FileTypePDF,
		"report.docx": models.FileTypeDOCX,
	}
	for name, want := range cases {
		got, err := DetectFileType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := DetectFileType("archive.tar.gz")
	assert.ErrorIs(t, err, models.ErrUnsupportedFileType)
}

func TestLoadCSV(t *testing.T) {
	path := writeTemp(t, "devices.csv", "device,status\nrouter1,up\nswitch2,down\n")

	content, err := NewLocal().Load(path, models.FileTypeCSV)
	require.NoError(t, err)
	require.Len(t, content.Sheets, 1)
	assert.Equal(t, []string{"device", "status"}, content.Sheets[0].Header)
	assert.Equal(t, [][]string{{"router1", "up"}, {"switch2", "down"}}, content.Sheets[0].Rows)
}

func TestLoadCSVRaggedRows(t *testing.T) {
	path := writeTemp(t, "ragged.csv", "a,b,c\n1,2\n3,4,5,6\n")

	content, err := NewLocal().Load(path, models.FileTypeCSV)
	require.NoError(t, err)
	assert.Len(t, content.Sheets[0].Rows, 2)
}

func TestLoadCSVEmpty(t *testing.T) {
	path := writeTemp(t, "empty.csv", "")

	_, err := NewLocal().Load(path, models.FileTypeCSV)
	assert.ErrorIs(t, err, models.ErrExtractionFailure)
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "tree.json", `{"site": "hq", "devices": [1, 2]}`)

	content, err := NewLocal().Load(path, models.FileTypeJSON)
	require.NoError(t, err)
	tree, ok := content.JSON.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hq", tree["site"])
}

func TestLoadJSONInvalid(t *testing.T) {
	path := writeTemp(t, "broken.json", "{not json")

	_, err := NewLocal().Load(path, models.FileTypeJSON)
	assert.ErrorIs(t, err, models.ErrExtractionFailure)
}

func TestLoadText(t *testing.T) {
	path := writeTemp(t, "notes.txt", "plain text body")

	content, err := NewLocal().Load(path, models.FileTypeText)
	require.NoError(t, err)
	assert.Equal(t, "plain text body", content.Text)
}

func TestLoadMarkdownStripsFormatting(t *testing.T) {
	path := writeTemp(t, "readme.md", "# Title\n\nSome **bold** and `code` text.\n\n- item one\n- item two\n")

	content, err := NewLocal().Load(path, models.FileTypeMarkdown)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "Title")
	assert.Contains(t, content.Text, "bold")
	assert.Contains(t, content.Text, "item one")
	assert.NotContains(t, content.Text, "#")
	assert.NotContains(t, content.Text, "**")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLocal().Load("/nonexistent/file.csv", models.FileTypeCSV)
	assert.ErrorIs(t, err, models.ErrExtractionFailure)
}

func TestLoadUnsupportedType(t *testing.T) {
	_, err := NewLocal().Load("whatever", models.FileType("zip"))
	assert.ErrorIs(t, err, models.ErrUnsupportedFileType)
}

func TestExtractDocxText(t *testing.T) {
	xml := `<w:p><w:r><w:t>hello</w:t></w:r><w:r><w:t xml:space="preserve">world</w:t></w:r></w:p>`
	assert.Equal(t, "hello world ", extractDocxText(xml))
}
