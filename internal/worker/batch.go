package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fundops/dealfill/internal/model"
)

// Parser turns one memo file into a report.
type Parser interface {
	ParseFile(ctx context.Context, path string) (*model.Report, error)
}

// MemoJob parses a single memo file.
type MemoJob struct {
	Path   string
	Parser Parser
}

// Execute runs the parse and wraps the outcome.
func (j *MemoJob) Execute(ctx context.Context) Result {
	report, err := j.Parser.ParseFile(ctx, j.Path)
	return &MemoResult{Path: j.Path, Report: report, Error: err}
}

// MemoResult is the outcome of one memo parse.
type MemoResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// Err returns the parse error, nil on success.
func (r *MemoResult) Err() error {
	return r.Error
}

// BatchProcessor fans memo files out over a worker pool.
type BatchProcessor struct {
	parser      Parser
	concurrency int
}

// NewBatchProcessor creates a batch processor running at the given
// concurrency.
func NewBatchProcessor(parser Parser, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		parser:      parser,
		concurrency: concurrency,
	}
}

// ProcessPaths parses the given memo files concurrently. Results arrive
// in completion order, one per path; a cancelled context cuts the
// batch short.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*MemoResult {
	if len(paths) == 0 {
		return []*MemoResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit from a goroutine so Wait drains results while the queue
	// fills. A manifest larger than the channel buffers would wedge a
	// submit-then-wait loop.
	go func() {
		for _, path := range paths {
			pool.Submit(&MemoJob{Path: path, Parser: b.parser})
		}
		pool.Close()
	}()

	results := pool.Wait()

	memoResults := make([]*MemoResult, len(results))
	for i, result := range results {
		memoResults[i] = result.(*MemoResult)
	}
	return memoResults
}

// ProcessManifest reads a manifest of memo paths and parses every entry.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, path string) ([]*MemoResult, error) {
	paths, err := ReadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadManifest reads memo paths from a manifest file: one per line, blank
// lines and #-comments skipped, duplicates dropped.
func ReadManifest(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	return paths, nil
}
