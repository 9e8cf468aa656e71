package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fundops/dealfill/internal/model"
)

// stubParser implements Parser
type stubParser struct {
	shouldError bool
}

func (p *stubParser) ParseFile(ctx context.Context, path string) (*model.Report, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if p.shouldError {
		return nil, errors.New("parse error")
	}
	return &model.Report{Source: path}, nil
}

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memos.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	processor := NewBatchProcessor(&stubParser{}, 2)

	paths := []string{"memos/acme.txt", "memos/orbit.txt", "memos/nimbus.txt"}
	results := processor.ProcessPaths(context.Background(), paths)

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			continue
		}
		if res.Report == nil {
			t.Errorf("expected report for %s", res.Path)
		} else if res.Report.Source != res.Path {
			t.Errorf("expected source %s, got %s", res.Path, res.Report.Source)
		}
	}
}

func TestBatchProcessor_ProcessPaths_Error(t *testing.T) {
	processor := NewBatchProcessor(&stubParser{shouldError: true}, 2)

	results := processor.ProcessPaths(context.Background(), []string{"memos/acme.txt"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessPaths_LargerThanBuffers(t *testing.T) {
	processor := NewBatchProcessor(&stubParser{}, 4)

	// Well past the pool's channel capacity, to catch a submit loop
	// that stops draining.
	paths := make([]string, 64)
	for i := range paths {
		paths[i] = fmt.Sprintf("memos/memo-%02d.txt", i)
	}

	done := make(chan []*MemoResult, 1)
	go func() {
		done <- processor.ProcessPaths(context.Background(), paths)
	}()

	select {
	case results := <-done:
		if len(results) != len(paths) {
			t.Errorf("expected %d results, got %d", len(paths), len(results))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("ProcessPaths wedged on a batch larger than the channel buffers")
	}
}

func TestBatchProcessor_ProcessPaths_Empty(t *testing.T) {
	processor := NewBatchProcessor(&stubParser{}, 2)

	results := processor.ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessManifest(t *testing.T) {
	path := writeManifest(t, "memos/acme.txt\n# comment\n\nmemos/orbit.txt\n")

	processor := NewBatchProcessor(&stubParser{}, 2)

	results, err := processor.ProcessManifest(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessManifest failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessManifest_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&stubParser{}, 2)

	if _, err := processor.ProcessManifest(context.Background(), "no_such_manifest.txt"); err == nil {
		t.Error("expected error for non-existent manifest, got nil")
	}
}

func TestReadManifest(t *testing.T) {
	path := writeManifest(t, `memos/acme.txt
# comment
memos/orbit.txt

memos/nimbus.txt   `)

	paths, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	expected := []string{"memos/acme.txt", "memos/orbit.txt", "memos/nimbus.txt"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d", len(expected), len(paths))
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadManifest_Deduplication(t *testing.T) {
	path := writeManifest(t, "memos/acme.txt\nmemos/acme.txt\n")

	paths, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("expected 1 path after deduplication, got %d", len(paths))
	}
}

func TestReadManifest_NonExistent(t *testing.T) {
	if _, err := ReadManifest("no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestMemoResult_Err(t *testing.T) {
	r1 := &MemoResult{Path: "memos/acme.txt"}
	if r1.Err() != nil {
		t.Errorf("expected nil error, got %v", r1.Err())
	}

	expected := errors.New("parse failed")
	r2 := &MemoResult{Path: "memos/acme.txt", Error: expected}
	if r2.Err() != expected {
		t.Errorf("expected %v, got %v", expected, r2.Err())
	}
}
