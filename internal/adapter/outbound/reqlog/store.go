// Package reqlog provides file-based request log persistence in JSON Lines
// format with daily rotation and an in-memory ring cache serving the
// "recent logs" endpoint.
package reqlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one completed HTTP request.
type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	RemoteIP   string    `json:"remote_ip"`
}

// Config holds configuration for the file-based request log store.
type Config struct {
	// Dir is the directory log files are written to. Empty disables file
	// persistence; the in-memory cache still works.
	Dir string
	// CacheSize is the number of recent records kept in memory (default 1000).
	CacheSize int
}

// FileStore appends request records to a daily-rotated JSON Lines file and
// keeps the most recent records in a ring cache for cheap reads.
type FileStore struct {
	dir         string
	logger      *slog.Logger
	mu          sync.Mutex
	currentFile *os.File
	currentDate string
	cache       *ringCache
	closed      bool
}

// NewFileStore creates a request log store. When cfg.Dir is non-empty the
// directory is created and today's file opened; records are still cached in
// memory when file persistence is disabled.
func NewFileStore(cfg Config, logger *slog.Logger) (*FileStore, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &FileStore{
		dir:    cfg.Dir,
		logger: logger,
		cache:  newRingCache(cfg.CacheSize),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("create request log directory: %w", err)
		}
		today := time.Now().UTC().Format("2006-01-02")
		if err := s.openCurrentFile(today); err != nil {
			return nil, fmt.Errorf("open request log file: %w", err)
		}
	}

	return s, nil
}

// Append stores a record in the cache and, when file persistence is
// enabled, appends it as a JSON line, rotating on date change.
func (s *FileStore) Append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.add(rec)

	if s.currentFile == nil || s.closed {
		return
	}

	dateStr := rec.Timestamp.UTC().Format("2006-01-02")
	if dateStr != s.currentDate {
		if err := s.openCurrentFile(dateStr); err != nil {
			s.logger.Error("request log rotation failed", "error", err)
			return
		}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("request log marshal failed", "error", err)
		return
	}
	line = append(line, '\n')
	if _, err := s.currentFile.Write(line); err != nil {
		s.logger.Error("request log write failed", "error", err)
	}
}

// Recent returns up to n of the most recent records, newest last.
func (s *FileStore) Recent(n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.recent(n)
}

// Size returns the number of cached records.
func (s *FileStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.size
}

// Close flushes and closes the current log file. Append becomes cache-only.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.currentFile == nil {
		return nil
	}
	err := s.currentFile.Close()
	s.currentFile = nil
	return err
}

// openCurrentFile closes any open file and opens the file for the given
// date, appending if it exists. Caller holds mu.
func (s *FileStore) openCurrentFile(date string) error {
	if s.currentFile != nil {
		_ = s.currentFile.Close()
		s.currentFile = nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("requests-%s.log", date))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	s.currentFile = f
	s.currentDate = date
	return nil
}

// ringCache is a fixed-size ring buffer of records. Not safe for concurrent
// use; FileStore guards it with its mutex.
type ringCache struct {
	records []Record
	next    int
	size    int
}

func newRingCache(capacity int) *ringCache {
	return &ringCache{records: make([]Record, capacity)}
}

func (c *ringCache) add(rec Record) {
	c.records[c.next] = rec
	c.next = (c.next + 1) % len(c.records)
	if c.size < len(c.records) {
		c.size++
	}
}

// recent returns up to n records in chronological order (newest last).
func (c *ringCache) recent(n int) []Record {
	if n <= 0 || c.size == 0 {
		return []Record{}
	}
	if n > c.size {
		n = c.size
	}
	out := make([]Record, 0, n)
	start := c.next - n
	if start < 0 {
		start += len(c.records)
	}
	for i := 0; i < n; i++ {
		out = append(out, c.records[(start+i)%len(c.records)])
	}
	return out
}
