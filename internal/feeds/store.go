// Package feeds implements the as-of/leakage-guarded snapshot store
// (C2) and the five feed adapters (weather, market, odds, injury_news,
// nextgenstats) that normalize external signal sources into
// domain.FeedEnvelope records.
package feeds

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// record is the on-disk JSONL shape for one append-only snapshot entry.
type record struct {
	PublishTime     time.Time              `json:"publish_time"`
	SourceTimestamp time.Time              `json:"source_timestamp"`
	Data            map[string]interface{} `json:"data"`
	QualityFlags    []string               `json:"quality_flags"`
	Warnings        []string               `json:"warnings"`
}

func (r record) toEnvelope() domain.FeedEnvelope {
	flags := make(map[string]struct{}, len(r.QualityFlags))
	for _, f := range r.QualityFlags {
		flags[f] = struct{}{}
	}
	return domain.FeedEnvelope{
		Data:            r.Data,
		SourceTimestamp: r.SourceTimestamp,
		QualityFlags:    flags,
		Warnings:        r.Warnings,
		PublishTime:     r.PublishTime,
	}
}

func fromEnvelope(e domain.FeedEnvelope) record {
	flags := make([]string, 0, len(e.QualityFlags))
	for f := range e.QualityFlags {
		flags = append(flags, f)
	}
	sort.Strings(flags)
	return record{
		PublishTime:     e.PublishTime,
		SourceTimestamp: e.SourceTimestamp,
		Data:            e.Data,
		QualityFlags:    flags,
		Warnings:        e.Warnings,
	}
}

// SnapshotStore persists FeedEnvelopes append-only, one JSONL file per
// (league, year, week, feed_name), and resolves the latest record at
// or before a given as-of cutoff.
type SnapshotStore struct {
	Root string
	mu   sync.Mutex // guards concurrent appends from this process
}

// NewSnapshotStore opens (creating if needed) the snapshot root.
func NewSnapshotStore(root string) (*SnapshotStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot root %s: %w", root, err)
	}
	return &SnapshotStore{Root: root}, nil
}

func (s *SnapshotStore) path(league string, year, week int, feedName string) string {
	return filepath.Join(s.Root, league, fmt.Sprintf("%d", year), fmt.Sprintf("week_%d", week), feedName+".jsonl")
}

// Record appends one envelope to the (league, year, week, feed_name)
// log. An OS advisory lock on the open file descriptor guards against
// interleaved writes from concurrent appenders, in-process or not.
func (s *SnapshotStore) Record(league string, year, week int, feedName string, envelope domain.FeedEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.path(league, year, week, feedName)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open snapshot log %s: %w", p, err)
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock snapshot log %s: %w", p, err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	line, err := json.Marshal(fromEnvelope(envelope))
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append snapshot record: %w", err)
	}
	return nil
}

func (s *SnapshotStore) readAll(league string, year, week int, feedName string) ([]record, error) {
	p := s.path(league, year, week, feedName)
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot log %s: %w", p, err)
	}
	defer f.Close()

	var records []record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var r record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PublishTime.Before(records[j].PublishTime) })
	return records, scanner.Err()
}

// StalenessConfig configures, per feed name, how old a resolved
// record may be relative to asOf before it is flagged stale.
type StalenessConfig map[string]time.Duration

// Resolve returns the latest record with PublishTime <= asOf (or the
// most recent record if asOf is the zero value), per the
// backward_publish_time / degrade_warn policy. A miss yields a neutral
// envelope flagged as_of_miss; a hit older than the feed's configured
// max staleness is flagged stale but still returned.
func (s *SnapshotStore) Resolve(league string, year, week int, feedName string, asOf time.Time, staleness StalenessConfig) (domain.FeedEnvelope, error) {
	records, err := s.readAll(league, year, week, feedName)
	if err != nil {
		return domain.FeedEnvelope{}, err
	}

	var chosen *record
	if asOf.IsZero() {
		if len(records) > 0 {
			chosen = &records[len(records)-1]
		}
	} else {
		for i := len(records) - 1; i >= 0; i-- {
			if !records[i].PublishTime.After(asOf) {
				chosen = &records[i]
				break
			}
		}
	}

	if chosen == nil {
		return domain.NewNeutralEnvelope("as_of_miss", fmt.Sprintf("no %s record at or before as-of cutoff", feedName)), fmt.Errorf("%s/%s: %w", league, feedName, utils.ErrAsOfMiss)
	}

	envelope := chosen.toEnvelope()
	if maxStale, ok := staleness[feedName]; ok && !asOf.IsZero() {
		if chosen.PublishTime.Before(asOf.Add(-maxStale)) {
			envelope.QualityFlags["stale"] = struct{}{}
			envelope.Warnings = append(envelope.Warnings, fmt.Sprintf("%s record is older than max_staleness", feedName))
		}
	}
	return envelope, nil
}

// Prune deletes snapshot records older than retentionDays across the
// entire store. Files with no remaining records are left in place
// empty; callers replay from the JSONL log so an empty file behaves
// like no records.
func (s *SnapshotStore) Prune(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.Walk(s.Root, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(p) != ".jsonl" {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		var kept []record
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var r record
			if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
				continue
			}
			if r.PublishTime.After(cutoff) {
				kept = append(kept, r)
			}
		}
		f.Close()

		tmp := p + ".tmp"
		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		for _, r := range kept {
			line, _ := json.Marshal(r)
			out.Write(append(line, '\n'))
		}
		out.Close()
		return os.Rename(tmp, p)
	})
}
