// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts layout-preserving text from proposal PDFs.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// textDir is the subdirectory under the cache base for extracted text.
const textDir = "text"

// Converter turns a PDF file into plain text with one form feed between
// pages and the page layout kept in spaces.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns its text.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// Status reports what ConvertProposal did.
type Status string

const (
	StatusConverted Status = "converted"
	StatusCached    Status = "cached"
	StatusFailed    Status = "failed"
)

// TextPath returns where the extracted text for pdfPath is cached.
func TextPath(cacheDir, pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(cacheDir, textDir, base+".txt")
}

// ConvertProposal returns the text of one proposal PDF. Text already in the
// cache is read back instead of converting again.
func ConvertProposal(ctx context.Context, c Converter, pdfPath, cacheDir string, w io.Writer) (string, Status, error) {
	txtPath := TextPath(cacheDir, pdfPath)
	name := filepath.Base(txtPath)

	if data, err := os.ReadFile(txtPath); err == nil {
		fmt.Fprintf(w, "cached:    %s\n", name)
		return string(data), StatusCached, nil
	}

	if err := os.MkdirAll(filepath.Dir(txtPath), 0o755); err != nil {
		return "", StatusFailed, fmt.Errorf("creating text directory: %w", err)
	}

	text, err := c.Convert(ctx, pdfPath)
	if err != nil {
		fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
		return "", StatusFailed, err
	}

	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return "", StatusFailed, fmt.Errorf("writing %s: %w", txtPath, err)
	}

	fmt.Fprintf(w, "converted: %s\n", name)
	return text, StatusConverted, nil
}
