package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/dupnorris/pkg/models"
)

func sampleReport() *models.ScanReport {
	report := &models.ScanReport{
		RunID:     "run-1",
		Root:      "/data",
		Recursive: true,
		Strategy:  models.StrategyRepresentative,
		StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
	report.Stats.FilesCataloged = 5
	report.Stats.BytesCataloged = 4096
	report.Stats.FilesConsidered = 5
	report.Stats.Buckets = 2
	report.Stats.CandidateBuckets = 1
	report.Stats.Comparisons.Add(3)
	report.SetGroups([]models.DuplicateGroup{
		{Size: 1024, Representative: "a", Paths: []string{"a", "b"}},
		{Size: 1024, Representative: "c", Paths: []string{"c", "d", "sub/e"}},
	})
	return report
}

func TestNew(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"human", "human"},
		{"json", "json"},
		{"progress", "progress"},
		{"", "human"},
		{"unknown", "human"},
	}

	for _, tt := range tests {
		if got := New(tt.format, false).Name(); got != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.format, got, tt.want)
		}
	}

	if f, ok := New("human", true).(*HumanFormatter); !ok || !f.Quiet {
		t.Error("New(human, quiet) should return a quiet HumanFormatter")
	}
}

func TestHumanFormatterComplete(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()
	if err := f.Start(&buf, 5, 4096, 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Verifying 5 files in 1 size groups",
		"[1] 2 files x 1.0 KiB",
		"[2] 3 files x 1.0 KiB",
		"sub/e",
		"Duplicate groups: 2 (5 files)",
		"Reclaimable:      3.0 KiB",
		"Status: duplicates",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHumanFormatterQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()
	f.Quiet = true
	f.Start(&buf, 5, 4096, 1)
	f.Complete(sampleReport())

	want := "a\nb\n\nc\nd\nsub/e\n"
	if buf.String() != want {
		t.Errorf("quiet output = %q, want %q", buf.String(), want)
	}
}

func TestHumanFormatterKeepsWriter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter()
	f.Quiet = true
	f.Start(&buf, 0, 0, 0)
	f.Start(nil, 5, 4096, 1)
	f.Complete(sampleReport())

	if !strings.HasPrefix(buf.String(), "a\nb\n") {
		t.Errorf("Start(nil) should keep the previous writer, got %q", buf.String())
	}
}

func TestJSONFormatterComplete(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&buf, 5, 4096, 1)
	f.Progress(ProgressUpdate{Type: "bucket_complete"})
	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var got JSONReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if got.RunID != "run-1" || got.Status != "duplicates" || got.Strategy != "representative" {
		t.Errorf("unexpected header: %+v", got)
	}
	if got.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", got.DurationMs)
	}
	if got.Stats.Comparisons != 3 || got.Stats.DuplicateFiles != 5 || got.Stats.WastedBytes != 3072 {
		t.Errorf("unexpected stats: %+v", got.Stats)
	}
	if len(got.Groups) != 2 || got.Groups[1].Representative != "c" || len(got.Groups[1].Paths) != 3 {
		t.Errorf("unexpected groups: %+v", got.Groups)
	}
}

func TestJSONFormatterEmptyGroups(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&buf, 0, 0, 0)

	report := &models.ScanReport{Strategy: models.StrategyHash}
	report.SetGroups(nil)
	f.Complete(report)

	if !strings.Contains(buf.String(), `"groups": []`) {
		t.Errorf("groups should encode as an empty array:\n%s", buf.String())
	}
}

func TestJSONFormatterError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{"Failed", errors.New("disk gone"), "failed"},
		{"Cancelled", fmt.Errorf("scan: %w", context.Canceled), "cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := NewJSONFormatter()
			f.Start(&buf, 0, 0, 0)
			f.Error(tt.err)

			var got map[string]string
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if got["status"] != tt.status {
				t.Errorf("status = %q, want %q", got["status"], tt.status)
			}
			if got["error"] != tt.err.Error() {
				t.Errorf("error = %q, want %q", got["error"], tt.err.Error())
			}
		})
	}
}

func TestProgressFormatter(t *testing.T) {
	var bar, summary bytes.Buffer
	f := NewProgressFormatter()
	f.barOut = &bar

	if err := f.Start(&summary, 5, 4096, 2); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.Progress(ProgressUpdate{Type: "bucket_complete", GroupsFound: 1, CurrentBucket: 1, TotalBuckets: 2})
	f.Progress(ProgressUpdate{Type: "bucket_complete", GroupsFound: 1, CurrentBucket: 2, TotalBuckets: 2})

	if f.groups != 2 {
		t.Errorf("groups = %d, want 2", f.groups)
	}
	if got := f.bar.Current(); got != 2 {
		t.Errorf("bar current = %d, want 2", got)
	}

	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !f.bar.IsFinished() {
		t.Error("bar should be finished after Complete")
	}
	if !strings.Contains(bar.String(), "2 duplicate groups") {
		t.Errorf("bar output missing group count: %q", bar.String())
	}
	if !strings.Contains(summary.String(), "Status: duplicates") {
		t.Errorf("summary missing status:\n%s", summary.String())
	}
}

func TestProgressFormatterNoBuckets(t *testing.T) {
	var bar, summary bytes.Buffer
	f := NewProgressFormatter()
	f.barOut = &bar

	f.Start(&summary, 0, 0, 0)
	f.Progress(ProgressUpdate{Type: "bucket_complete", CurrentBucket: 1})

	report := &models.ScanReport{}
	report.SetGroups(nil)
	if err := f.Complete(report); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if f.bar != nil {
		t.Error("no bar should be drawn without buckets")
	}
	if bar.Len() != 0 {
		t.Errorf("unexpected bar output: %q", bar.String())
	}
	if !strings.Contains(summary.String(), "Status: clean") {
		t.Errorf("summary missing status:\n%s", summary.String())
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()

	t.Run("Human", func(t *testing.T) {
		path := filepath.Join(dir, "report.txt")
		if err := WriteReport(sampleReport(), path, "human"); err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		for _, want := range []string{"Duplicates Report", "Root: /data", "Group 2: 3 files of 1.0 KiB", "  sub/e"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("report missing %q:\n%s", want, data)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		if err := WriteReport(sampleReport(), path, "json"); err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var got struct {
			Generated string          `json:"generated"`
			Groups    []JSONGroupData `json:"groups"`
		}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Generated == "" || len(got.Groups) != 2 {
			t.Errorf("unexpected document: %s", data)
		}
	})

	t.Run("NoGroups", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		report := &models.ScanReport{}
		report.SetGroups(nil)
		if err := WriteReport(report, path, "human"); err != nil {
			t.Fatalf("WriteReport() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("no report file should be written without groups")
		}
	})
}
