package reqlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func makeRecord(i int) Record {
	return Record{
		Timestamp:  time.Date(2026, 8, 26, 12, 0, i, 0, time.UTC),
		RequestID:  fmt.Sprintf("req-%d", i),
		Method:     "GET",
		Path:       "/api/v1/books",
		Status:     200,
		DurationMS: float64(i),
		RemoteIP:   "127.0.0.1",
	}
}

func TestAppendAndRecent(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(Config{CacheSize: 10}, nil)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	for i := 0; i < 5; i++ {
		s.Append(makeRecord(i))
	}

	got := s.Recent(3)
	if len(got) != 3 {
		t.Fatalf("Recent(3) returned %d records, want 3", len(got))
	}
	// Newest last.
	for i, want := range []string{"req-2", "req-3", "req-4"} {
		if got[i].RequestID != want {
			t.Errorf("Recent(3)[%d].RequestID = %q, want %q", i, got[i].RequestID, want)
		}
	}

	if s.Size() != 5 {
		t.Errorf("Size() = %d, want 5", s.Size())
	}
}

func TestRecent_MoreThanCached(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(Config{CacheSize: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Append(makeRecord(0))
	s.Append(makeRecord(1))

	got := s.Recent(100)
	if len(got) != 2 {
		t.Errorf("Recent(100) returned %d records, want 2", len(got))
	}
}

func TestRecent_Empty(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(Config{CacheSize: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if got := s.Recent(10); len(got) != 0 {
		t.Errorf("Recent(10) = %v, want empty", got)
	}
	if got := s.Recent(0); len(got) != 0 {
		t.Errorf("Recent(0) = %v, want empty", got)
	}
}

func TestRingWraparound(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(Config{CacheSize: 3}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i := 0; i < 7; i++ {
		s.Append(makeRecord(i))
	}

	if s.Size() != 3 {
		t.Errorf("Size() = %d, want 3 after wraparound", s.Size())
	}
	got := s.Recent(3)
	for i, want := range []string{"req-4", "req-5", "req-6"} {
		if got[i].RequestID != want {
			t.Errorf("Recent(3)[%d].RequestID = %q, want %q", i, got[i].RequestID, want)
		}
	}
}

func TestFilePersistence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFileStore(Config{Dir: dir, CacheSize: 10}, nil)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	// Timestamps must fall on today's date or Append rotates to another file.
	now := time.Now().UTC()
	rec0, rec1 := makeRecord(0), makeRecord(1)
	rec0.Timestamp, rec1.Timestamp = now, now.Add(time.Second)
	s.Append(rec0)
	s.Append(rec1)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("requests-%s.log", now.Format("2006-01-02")))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	var lines []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(lines)+1, err)
		}
		lines = append(lines, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	if len(lines) != 2 {
		t.Fatalf("log file has %d lines, want 2", len(lines))
	}
	if lines[0].RequestID != "req-0" || lines[1].RequestID != "req-1" {
		t.Errorf("lines = %q, %q; want req-0, req-1", lines[0].RequestID, lines[1].RequestID)
	}
	if lines[0].Path != "/api/v1/books" {
		t.Errorf("Path = %q, want /api/v1/books", lines[0].Path)
	}
}

func TestAppendAfterClose_CacheOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFileStore(Config{Dir: dir, CacheSize: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Must not panic or write; the cache still records it.
	s.Append(makeRecord(9))
	if s.Size() != 1 {
		t.Errorf("Size() = %d, want 1", s.Size())
	}
}

func TestCacheOnlyMode(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(Config{}, nil)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	s.Append(makeRecord(0))
	if got := s.Recent(1); len(got) != 1 || got[0].RequestID != "req-0" {
		t.Errorf("Recent(1) = %v, want the appended record", got)
	}
}
