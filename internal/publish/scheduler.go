// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish posts a compiled queue to the social platform, each
// entry at its scheduled time.
package publish

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/jwst-live/internal/render"
	"github.com/pdiddy/jwst-live/pkg/types"
)

// ErrNoFuturePosts ends a publishing session: the queue the link file
// points at holds nothing left to publish.
var ErrNoFuturePosts = errors.New("no future posts to publish")

// Ledger remembers which posts were published.
type Ledger interface {
	Published(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, post types.Post, runDir, remoteID string, at time.Time) error
}

// Scheduler publishes the queue named by a link file. The link file holds
// the path of the current run directory on its first line; pointing it at
// a new directory switches queues.
type Scheduler struct {
	Poster   Poster
	Ledger   Ledger // optional
	LinkFile string

	// Reload interrupts a wait so the link file is read again.
	Reload <-chan struct{}

	Log zerolog.Logger
	Out io.Writer

	// Now defaults to time.Now.
	Now func() time.Time

	// attempted holds the keys of posts tried in this session, published
	// or not, so a re-read queue never retries them.
	attempted map[string]bool
}

// ReadLink returns the run directory named by a link file.
func ReadLink(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening link file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		if dir := strings.TrimSpace(sc.Text()); dir != "" {
			return dir, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("reading link file: %w", err)
	}
	return "", fmt.Errorf("link file %s is empty", path)
}

// Run publishes until the queue runs dry, returning ErrNoFuturePosts, or
// until ctx is cancelled. Posts whose time has passed or that the ledger
// already holds are skipped. After the pending posts are published, or
// when a reload is signalled, the link file is read again.
func (s *Scheduler) Run(ctx context.Context) error {
	out := s.Out
	if out == nil {
		out = io.Discard
	}
	ctx = s.Log.WithContext(ctx)

	for {
		dir, err := ReadLink(s.LinkFile)
		if err != nil {
			return err
		}
		posts, err := render.ReadPosts(dir)
		if err != nil {
			return fmt.Errorf("loading queue from %s: %w", dir, err)
		}
		if len(posts) == 0 {
			return fmt.Errorf("queue in %s is empty", dir)
		}

		pending, err := s.pending(ctx, posts)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintf(out, "Ran out of posts in %s\n", dir)
			return ErrNoFuturePosts
		}
		for _, p := range pending {
			fmt.Fprintf(out, "scheduling: %s at %s\n", p.Title, p.PostTime.UTC().Format(time.RFC3339))
		}

		if err := s.publishAll(ctx, pending, dir, out); err != nil {
			return err
		}
	}
}

// pending returns the posts still due, in time order.
func (s *Scheduler) pending(ctx context.Context, posts []types.Post) ([]types.Post, error) {
	now := s.now()
	var due []types.Post
	for _, p := range posts {
		if p.PostTime.Before(now) || s.attempted[p.Key()] {
			continue
		}
		if s.Ledger != nil {
			done, err := s.Ledger.Published(ctx, p.Key())
			if err != nil {
				return nil, err
			}
			if done {
				continue
			}
		}
		due = append(due, p)
	}
	slices.SortStableFunc(due, func(a, b types.Post) int {
		return a.PostTime.Compare(b.PostTime)
	})
	return due, nil
}

// publishAll waits for and publishes each post. A reload signal returns
// early so the caller re-reads the link file. A failed post is logged and
// not recorded.
func (s *Scheduler) publishAll(ctx context.Context, pending []types.Post, dir string, out io.Writer) error {
	for _, p := range pending {
		reloaded, err := s.wait(ctx, p.PostTime)
		if err != nil {
			return err
		}
		if reloaded {
			fmt.Fprintln(out, "link file changed; reloading queue")
			return nil
		}

		if s.attempted == nil {
			s.attempted = make(map[string]bool)
		}
		s.attempted[p.Key()] = true

		fmt.Fprintf(out, "posting: %s\n", p.Title)
		id, err := s.Poster.Publish(ctx, p, dir)
		if err != nil {
			s.Log.Error().Err(err).Str("title", p.Title).Msg("publish failed")
			continue
		}
		if s.Ledger != nil {
			if err := s.Ledger.Record(ctx, p, dir, id, s.now()); err != nil {
				return err
			}
		}
		s.Log.Info().Str("title", p.Title).Str("id", id).Msg("published")
	}
	return nil
}

// wait blocks until at, ctx is done, or a reload is signalled.
func (s *Scheduler) wait(ctx context.Context, at time.Time) (reloaded bool, err error) {
	d := at.Sub(s.now())
	if d <= 0 {
		return false, ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-s.Reload:
		return true, nil
	case <-t.C:
		return false, nil
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
