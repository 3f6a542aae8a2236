// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/jwst-live/internal/container"
)

// DefaultImage provides poppler's pdftotext.
const DefaultImage = "minidocks/poppler:latest"

// PdftotextConverter runs "pdftotext -layout" through a container.Runtime,
// either inside an image or on the host.
type PdftotextConverter struct {
	runtime container.Runtime
	image   string
	binary  string
}

// NewPdftotextConverter creates a converter that runs binary (default
// "pdftotext") with the given runtime. For container runtimes it checks
// that the image exists locally before returning.
func NewPdftotextConverter(rt container.Runtime, image, binary string) (*PdftotextConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if binary == "" {
		binary = "pdftotext"
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &PdftotextConverter{runtime: rt, image: image, binary: binary}, nil
}

// Convert pipes the PDF at pdfPath through pdftotext and returns the text.
func (p *PdftotextConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	command := []string{p.binary, "-layout", "-enc", "UTF-8", "-", "-"}
	if err := p.runtime.Run(ctx, p.image, command, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with pdftotext: %w", pdfPath, err)
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced empty output for %s", pdfPath)
	}

	return out.String(), nil
}
