package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
)

// Extractor 从上传文件中抽取纯文本
type Extractor interface {
	// CanExtract 是否支持该文件
	CanExtract(path string) bool
	// ExtractText 抽取文本内容
	ExtractText(path string) (string, error)
}

// PlainTextExtractor 纯文本文件（.txt/.md）
type PlainTextExtractor struct{}

func (e *PlainTextExtractor) CanExtract(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func (e *PlainTextExtractor) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(data), nil
}

// DocconvExtractor 通过 docconv 抽取 pdf/docx 等格式
type DocconvExtractor struct{}

func (e *DocconvExtractor) CanExtract(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".html":
		return true
	}
	return false
}

func (e *DocconvExtractor) ExtractText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert document: %w", err)
	}
	return res.Body, nil
}

// CompositeExtractor 按扩展名选择具体的抽取器
type CompositeExtractor struct {
	extractors []Extractor
}

// NewCompositeExtractor 创建默认的组合抽取器
func NewCompositeExtractor() *CompositeExtractor {
	return &CompositeExtractor{
		extractors: []Extractor{
			&PlainTextExtractor{},
			&DocconvExtractor{},
		},
	}
}

func (e *CompositeExtractor) CanExtract(path string) bool {
	for _, ex := range e.extractors {
		if ex.CanExtract(path) {
			return true
		}
	}
	return false
}

func (e *CompositeExtractor) ExtractText(path string) (string, error) {
	for _, ex := range e.extractors {
		if ex.CanExtract(path) {
			return ex.ExtractText(path)
		}
	}
	return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
}
