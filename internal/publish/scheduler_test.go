// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/jwst-live/pkg/types"
)

type fakePoster struct {
	mu     sync.Mutex
	titles []string
	dirs   []string
	fail   map[string]bool
}

func (f *fakePoster) Publish(_ context.Context, post types.Post, baseDir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, post.Title)
	f.dirs = append(f.dirs, baseDir)
	if f.fail[post.Title] {
		return "", errors.New("platform unavailable")
	}
	return "id-" + post.Title, nil
}

func (f *fakePoster) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titles...)
}

type fakeLedger struct {
	records map[string]string
}

func newFakeLedger(keys ...string) *fakeLedger {
	l := &fakeLedger{records: make(map[string]string)}
	for _, k := range keys {
		l.records[k] = "earlier"
	}
	return l
}

func (l *fakeLedger) Published(_ context.Context, key string) (bool, error) {
	_, ok := l.records[key]
	return ok, nil
}

func (l *fakeLedger) Record(_ context.Context, post types.Post, _, remoteID string, _ time.Time) error {
	l.records[post.Key()] = remoteID
	return nil
}

// writeQueue writes posts.json into a new run directory and returns it.
func writeQueue(t *testing.T, posts ...types.Post) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(posts)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.json"), data, 0o644))
	return dir
}

func writeLink(t *testing.T, path, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(dir+"\n"), 0o644))
}

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func post(title string, offset time.Duration) types.Post {
	return types.Post{
		PostTime: epoch.Add(offset),
		Title:    title,
		Body:     []types.Block{{Type: types.BlockMarkdown, Value: title}},
	}
}

func newScheduler(t *testing.T, dir string, p Poster) (*Scheduler, *bytes.Buffer) {
	t.Helper()
	link := filepath.Join(t.TempDir(), "current")
	writeLink(t, link, dir)
	var out bytes.Buffer
	return &Scheduler{
		Poster:   p,
		LinkFile: link,
		Log:      zerolog.Nop(),
		Out:      &out,
		Now:      func() time.Time { return epoch },
	}, &out
}

func TestReadLink(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "link")
	require.NoError(t, os.WriteFile(path, []byte("  output/2024_01_01  \nignored\n"), 0o644))
	got, err := ReadLink(path)
	require.NoError(t, err)
	assert.Equal(t, "output/2024_01_01", got)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o644))
	_, err = ReadLink(empty)
	assert.ErrorContains(t, err, "is empty")

	_, err = ReadLink(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunPublishesDuePostsInOrder(t *testing.T) {
	dir := writeQueue(t,
		post("later", 20*time.Millisecond),
		post("past", -time.Hour),
		post("now", 0),
	)
	fp := &fakePoster{}
	s, out := newScheduler(t, dir, fp)
	l := newFakeLedger()
	s.Ledger = l

	err := s.Run(context.Background())
	require.ErrorIs(t, err, ErrNoFuturePosts)

	assert.Equal(t, []string{"now", "later"}, fp.published())
	assert.Equal(t, []string{dir, dir}, fp.dirs)
	assert.Equal(t, "id-now", l.records[post("now", 0).Key()])
	assert.Equal(t, "id-later", l.records[post("later", 20*time.Millisecond).Key()])
	assert.Contains(t, out.String(), "posting: now")
	assert.Contains(t, out.String(), "Ran out of posts in "+dir)
	assert.NotContains(t, out.String(), "scheduling: past")
}

func TestRunSkipsLedgeredPosts(t *testing.T) {
	done := post("done", 0)
	dir := writeQueue(t, done, post("fresh", 0))
	fp := &fakePoster{}
	s, _ := newScheduler(t, dir, fp)
	s.Ledger = newFakeLedger(done.Key())

	require.ErrorIs(t, s.Run(context.Background()), ErrNoFuturePosts)
	assert.Equal(t, []string{"fresh"}, fp.published())
}

func TestRunNothingPending(t *testing.T) {
	dir := writeQueue(t, post("past", -time.Minute))
	fp := &fakePoster{}
	s, out := newScheduler(t, dir, fp)

	require.ErrorIs(t, s.Run(context.Background()), ErrNoFuturePosts)
	assert.Empty(t, fp.published())
	assert.Contains(t, out.String(), "Ran out of posts")
}

func TestRunFailedPostNotRecorded(t *testing.T) {
	dir := writeQueue(t, post("broken", 0), post("fine", 0))
	fp := &fakePoster{fail: map[string]bool{"broken": true}}
	s, _ := newScheduler(t, dir, fp)
	l := newFakeLedger()
	s.Ledger = l

	require.ErrorIs(t, s.Run(context.Background()), ErrNoFuturePosts)
	// The failed post is tried once and never retried.
	assert.Equal(t, []string{"broken", "fine"}, fp.published())
	assert.Len(t, l.records, 1)
	assert.Contains(t, l.records, post("fine", 0).Key())
}

func TestRunEmptyQueue(t *testing.T) {
	dir := writeQueue(t)
	s, _ := newScheduler(t, dir, &fakePoster{})

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFuturePosts)
	assert.Contains(t, err.Error(), "is empty")
}

func TestRunMissingQueue(t *testing.T) {
	s, _ := newScheduler(t, t.TempDir(), &fakePoster{})
	err := s.Run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCancelledWhileWaiting(t *testing.T) {
	dir := writeQueue(t, post("tomorrow", 24*time.Hour))
	fp := &fakePoster{}
	s, _ := newScheduler(t, dir, fp)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, fp.published())
}

func TestRunReloadSwitchesQueue(t *testing.T) {
	first := writeQueue(t, post("tomorrow", 24*time.Hour))
	second := writeQueue(t, post("replacement", 0))
	fp := &fakePoster{}
	s, _ := newScheduler(t, first, fp)

	reload := make(chan struct{}, 1)
	s.Reload = reload
	go func() {
		time.Sleep(30 * time.Millisecond)
		os.WriteFile(s.LinkFile, []byte(second+"\n"), 0o644)
		reload <- struct{}{}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.ErrorIs(t, s.Run(ctx), ErrNoFuturePosts)
	assert.Equal(t, []string{"replacement"}, fp.published())
	assert.Equal(t, []string{second}, fp.dirs)
}
