package documents

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"legaldoc/internal/util"

	"github.com/ledongthuc/pdf"
)

// MaxUploadBytes bounds what the upload endpoint will buffer.
const MaxUploadBytes = 20 << 20

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

// Extract returns the plain text of an uploaded document, choosing the
// decoder from the file extension.
func Extract(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = extractPDF(bytes.NewReader(data), int64(len(data)))
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decode %s: not valid utf-8", name)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", util.ErrUnsupportedUpload, filepath.Ext(name))
	}
	if err != nil {
		return "", err
	}
	text = util.SanitizeText(text)
	if text == "" {
		return "", util.ErrNoExtractableText
	}
	return text, nil
}

// extractPDF converts parser panics on malformed files into errors.
func extractPDF(ra io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return buf.String(), nil
}
