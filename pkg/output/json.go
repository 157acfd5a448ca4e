package output

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// JSONFormatter writes the whole report as one JSON document on completion
type JSONFormatter struct {
	mu     sync.Mutex
	writer io.Writer
}

// JSONReport is the serialized form of a scan report
type JSONReport struct {
	RunID      string          `json:"run_id"`
	Root       string          `json:"root"`
	Recursive  bool            `json:"recursive"`
	Strategy   string          `json:"strategy"`
	Status     string          `json:"status"`
	StartTime  time.Time       `json:"start_time"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Stats      JSONStatsData   `json:"stats"`
	Groups     []JSONGroupData `json:"groups"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	FilesCataloged   int   `json:"files_cataloged"`
	BytesCataloged   int64 `json:"bytes_cataloged"`
	FilesConsidered  int   `json:"files_considered"`
	Buckets          int   `json:"buckets"`
	CandidateBuckets int   `json:"candidate_buckets"`
	Comparisons      int64 `json:"comparisons"`
	FilesHashed      int64 `json:"files_hashed"`
	BytesCompared    int64 `json:"bytes_compared"`
	DuplicateGroups  int   `json:"duplicate_groups"`
	DuplicateFiles   int   `json:"duplicate_files"`
	WastedBytes      int64 `json:"wasted_bytes"`
}

// JSONGroupData represents one duplicate group
type JSONGroupData struct {
	Size           int64    `json:"size"`
	Representative string   `json:"representative"`
	Paths          []string `json:"paths"`
}

// NewJSONReport converts a report to its JSON form
func NewJSONReport(report *models.ScanReport) JSONReport {
	out := JSONReport{
		RunID:      report.RunID,
		Root:       report.Root,
		Recursive:  report.Recursive,
		Strategy:   string(report.Strategy),
		Status:     string(report.Status),
		StartTime:  report.StartTime,
		Duration:   report.Duration.String(),
		DurationMs: report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			FilesCataloged:   report.Stats.FilesCataloged,
			BytesCataloged:   report.Stats.BytesCataloged,
			FilesConsidered:  report.Stats.FilesConsidered,
			Buckets:          report.Stats.Buckets,
			CandidateBuckets: report.Stats.CandidateBuckets,
			Comparisons:      report.Stats.Comparisons.Load(),
			FilesHashed:      report.Stats.FilesHashed.Load(),
			BytesCompared:    report.Stats.BytesCompared.Load(),
			DuplicateGroups:  report.Stats.DuplicateGroups,
			DuplicateFiles:   report.Stats.DuplicateFiles,
			WastedBytes:      report.Stats.WastedBytes,
		},
		Groups: make([]JSONGroupData, 0, len(report.Groups)),
	}

	for _, g := range report.Groups {
		out.Groups = append(out.Groups, JSONGroupData{
			Size:           g.Size,
			Representative: g.Representative,
			Paths:          g.Paths,
		})
	}

	return out
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64, totalBuckets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = f.writer
	}
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is ignored; the document is written once
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report document
func (f *JSONFormatter) Complete(report *models.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.encode(NewJSONReport(report))
}

// Error writes an error document
func (f *JSONFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := models.StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = models.StatusCancelled
	}
	return f.encode(map[string]string{
		"status": string(status),
		"error":  err.Error(),
	})
}

func (f *JSONFormatter) encode(v any) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
