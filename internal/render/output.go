// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/internal/container"
	"github.com/pdiddy/jwst-live/pkg/types"
)

// Output file names inside a run directory.
const (
	ScriptFile     = "screenshot_script.ssc"
	MetadataFile   = "metadata.json"
	PostsFile      = "posts.json"
	ScreenshotsDir = "screenshots"
)

// RunDir returns the output directory for a compile run on the given day.
func RunDir(base string, now time.Time) string {
	return filepath.Join(base, now.Format("2006_01_02"))
}

// Outputs lists the files a compile run produced.
type Outputs struct {
	Dir         string
	Script      string
	Metadata    string
	Posts       string
	Screenshots string

	Shots     int
	PostCount int
}

// Write renders obs into dir: the planetarium script, metadata.json,
// posts.json and an empty screenshots directory.
func Write(dir string, obs []types.Observation, log zerolog.Logger) (Outputs, error) {
	out := Outputs{
		Dir:         dir,
		Script:      filepath.Join(dir, ScriptFile),
		Metadata:    filepath.Join(dir, MetadataFile),
		Posts:       filepath.Join(dir, PostsFile),
		Screenshots: filepath.Join(dir, ScreenshotsDir),
	}
	if err := os.MkdirAll(out.Screenshots, 0o755); err != nil {
		return out, fmt.Errorf("creating output directory: %w", err)
	}

	script, err := Script(obs)
	if err != nil {
		return out, fmt.Errorf("rendering script: %w", err)
	}
	if err := os.WriteFile(out.Script, []byte(script), 0o644); err != nil {
		return out, fmt.Errorf("writing %s: %w", out.Script, err)
	}

	records := Metadata(obs, log)
	for _, r := range records {
		if r.Image != NotAvailable {
			out.Shots++
		}
	}
	if err := writeJSON(out.Metadata, records); err != nil {
		return out, err
	}

	posts, err := Posts(records, log)
	if err != nil {
		return out, err
	}
	if posts == nil {
		posts = []types.Post{}
	}
	out.PostCount = len(posts)
	if err := writeJSON(out.Posts, posts); err != nil {
		return out, err
	}
	return out, nil
}

// ReadPosts loads the post queue from a run directory.
func ReadPosts(dir string) ([]types.Post, error) {
	data, err := os.ReadFile(filepath.Join(dir, PostsFile))
	if err != nil {
		return nil, err
	}
	var posts []types.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PostsFile, err)
	}
	return posts, nil
}

// ReadMetadata loads the observation records of a run directory.
func ReadMetadata(dir string) ([]types.ObservationMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}
	var records []types.ObservationMetadata
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MetadataFile, err)
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Screenshot runs the planetarium on the generated script so it writes one
// image per observation into the screenshots directory.
func Screenshot(ctx context.Context, rt container.Runtime, cfg types.OutputConfig, out Outputs, stdout io.Writer) error {
	if cfg.Stellarium == "" {
		return fmt.Errorf("no planetarium executable configured")
	}
	fov := cfg.FieldOfView
	if fov <= 0 {
		fov = 40
	}
	shots, err := filepath.Abs(out.Screenshots)
	if err != nil {
		return err
	}
	script, err := filepath.Abs(out.Script)
	if err != nil {
		return err
	}
	command := []string{
		cfg.Stellarium,
		"--screenshot-dir", shots,
		"--full-screen", "yes",
		"--fov", strconv.Itoa(fov),
		"--projection-type", "ProjectionFisheye",
		"--startup-script", script,
	}
	return rt.Run(ctx, "", command, nil, stdout)
}
