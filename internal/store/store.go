// Package store persists audit results: one raw JSON document per
// successful fetch plus an append-only metrics.csv row per context.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/pagepulse/pagepulse/internal/pagespeed"
)

const lockFileName = ".pagepulse.lock"

// csvHeader is written exactly once per metrics file, before its first row.
// Cells carry no leading space: csv.Writer joins them with a bare comma, so
// the on-disk header reads "Page,Date,...". Renderings that show a space
// after each comma name the same columns; the cell values are canonical.
var csvHeader = []string{
	"Page",
	"Date",
	"First Contentful Paint",
	"Largest Contentful Paint",
	"Cumulative Layout Shift",
	"Total Blocking Time",
	"Speed Index",
}

// Store writes results beneath a root directory:
//
//	<root>/<context>/<YYYY-MM-DD>/<title>-<unixMilli>.json
//	<root>/<context>/metrics.csv
//
// An empty context collapses to a flat layout directly under root.
//
// The header-once behavior of metrics.csv is a check-then-act sequence and
// is only race-free with a single writer per directory, so the constructor
// takes an advisory lock on the root and refuses to share it with another
// running instance. Raw filenames embed a millisecond timestamp; two
// captures of the same (context, title) within the same millisecond
// collide, which is an accepted limitation.
type Store struct {
	root string
	lock *flock.Flock
	log  *zerolog.Logger
}

// New creates the root directory if needed and acquires its lock. It fails
// when another run already holds the lock.
func New(root string, log *zerolog.Logger) (*Store, error) {
	if root == "" {
		root = "./results"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock results dir: %w", err)
	}
	if !held {
		return nil, fmt.Errorf("results dir %s is locked by another pagepulse run", root)
	}

	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	log.Debug().Str("dir", root).Msg("results directory locked")
	return &Store{root: root, lock: lock, log: log}, nil
}

// Close releases the results directory lock.
func (s *Store) Close() error {
	return s.lock.Unlock()
}

// Save persists the raw result document and appends the derived metrics
// row for one successful fetch.
func (s *Store) Save(rec pagespeed.Record, body []byte) error {
	path, err := s.SaveRaw(rec.Context, rec.Title, body, rec.CapturedAt)
	if err != nil {
		return err
	}
	s.log.Debug().Str("path", path).Msg("raw result written")
	return s.AppendMetrics(rec)
}

// SaveRaw writes one raw result document and returns its path. Embedding
// the capture timestamp in the filename keeps repeated captures of the
// same page from overwriting each other.
func (s *Store) SaveRaw(pageContext, title string, body []byte, capturedAt time.Time) (string, error) {
	dir := filepath.Join(s.contextDir(pageContext), capturedAt.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}

	name := fmt.Sprintf("%s-%d.json", slug(title), capturedAt.UnixMilli())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o640); err != nil {
		return "", fmt.Errorf("write raw result: %w", err)
	}
	return path, nil
}

// AppendMetrics appends one row to the owning context's metrics.csv,
// writing the header first when the file is new or empty. Rows from prior
// runs are never truncated.
func (s *Store) AppendMetrics(rec pagespeed.Record) error {
	dir := s.contextDir(rec.Context)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create context dir: %w", err)
	}

	path := filepath.Join(dir, "metrics.csv")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open metrics file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat metrics file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write metrics header: %w", err)
		}
	}
	row := []string{
		rec.Title,
		rec.CapturedAt.Format("2006-01-02 15:04:05"),
		rec.FirstContentfulPaint,
		rec.LargestContentfulPaint,
		rec.CumulativeLayoutShift,
		rec.TotalBlockingTime,
		rec.SpeedIndex,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write metrics row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush metrics row: %w", err)
	}
	return nil
}

func (s *Store) contextDir(pageContext string) string {
	if pageContext == "" {
		return s.root
	}
	return filepath.Join(s.root, slug(pageContext))
}

// slug makes a string safe for use as a path component.
func slug(v string) string {
	v = strings.TrimSpace(v)
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		" ", "-",
		":", "-",
	)
	return replacer.Replace(v)
}
