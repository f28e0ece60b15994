package convert

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FileError records a single failed file in a batch.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Report is the outcome of a batch, in input order.
type Report struct {
	Converted []string     // output paths
	Errors    []*FileError // per-file failures
}

// BatchOption configures Batch.
type BatchOption func(*batchConfig)

type batchConfig struct {
	workers  int
	progress func(done int)
}

// WithWorkers bounds the number of files converted concurrently.
func WithWorkers(n int) BatchOption {
	return func(c *batchConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithProgress registers a callback invoked after each successful file with
// the number converted so far. It is called from a single goroutine.
func WithProgress(fn func(done int)) BatchOption {
	return func(c *batchConfig) {
		c.progress = fn
	}
}

type batchJob struct {
	in, out string
}

type batchResult struct {
	job batchJob
	err error
}

// Batch converts every file with the source extension of dir found under
// inputDir, mirroring relative paths under outputDir. Per-file failures are
// collected in the report and do not stop the batch.
func Batch(inputDir, outputDir string, dir Direction, opts ...BatchOption) (*Report, error) {
	cfg := &batchConfig{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(cfg)
	}

	jobs, err := collectJobs(inputDir, outputDir, dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	// Results are consumed in submission order while up to cfg.workers
	// conversions run ahead.
	futureResults := make(chan chan batchResult, cfg.workers)
	go func() {
		defer close(futureResults)
		for _, job := range jobs {
			resultChan := make(chan batchResult, 1)
			futureResults <- resultChan

			go func(job batchJob, ch chan batchResult) {
				ch <- batchResult{job: job, err: convertJob(job, dir)}
			}(job, resultChan)
		}
	}()

	report := &Report{}
	for resultCh := range futureResults {
		res := <-resultCh
		if res.err != nil {
			report.Errors = append(report.Errors, &FileError{Path: res.job.in, Err: res.err})
			continue
		}
		report.Converted = append(report.Converted, res.job.out)
		if cfg.progress != nil {
			cfg.progress(len(report.Converted))
		}
	}
	return report, nil
}

func collectJobs(inputDir, outputDir string, dir Direction) ([]batchJob, error) {
	var jobs []batchJob
	ext := dir.SourceExt()
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outputDir, relPath)
		outPath = strings.TrimSuffix(outPath, filepath.Ext(outPath)) + dir.TargetExt()
		jobs = append(jobs, batchJob{in: path, out: outPath})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	return jobs, nil
}

func convertJob(job batchJob, dir Direction) error {
	data, err := os.ReadFile(job.in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	out, err := dir.convert(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(job.out), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(job.out, out, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
