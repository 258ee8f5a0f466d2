package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextExtractor_CanExtract(t *testing.T) {
	e := &PlainTextExtractor{}
	assert.True(t, e.CanExtract("some/file.txt"))
	assert.True(t, e.CanExtract("some/FILE.MD"))
	assert.False(t, e.CanExtract("some/file.pdf"))
}

func TestPlainTextExtractor_ExtractText(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	e := &PlainTextExtractor{}
	text, err := e.ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestDocconvExtractor_CanExtract(t *testing.T) {
	e := &DocconvExtractor{}
	assert.True(t, e.CanExtract("report.pdf"))
	assert.True(t, e.CanExtract("report.docx"))
	assert.False(t, e.CanExtract("report.txt"))
}

func TestCompositeExtractor_Unsupported(t *testing.T) {
	e := NewCompositeExtractor()
	_, err := e.ExtractText("image.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
