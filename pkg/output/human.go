package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sdejongh/dupnorris/pkg/models"
)

var (
	bold   = color.New(color.Bold)
	faint  = color.New(color.Faint)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	// Quiet prints only the groups, one path per line, groups separated by
	// a blank line
	Quiet bool

	mu           sync.Mutex
	writer       io.Writer
	totalFiles   int
	totalBuckets int
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64, totalBuckets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = f.writer
	}
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles
	f.totalBuckets = totalBuckets

	if !f.Quiet && totalBuckets > 0 {
		faint.Fprintf(writer, "Verifying %d files in %d size groups (%s)\n",
			totalFiles, totalBuckets, humanize.IBytes(uint64(totalBytes)))
	}

	return nil
}

func (f *HumanFormatter) setWriter(writer io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if writer != nil {
		f.writer = writer
	}
}

// Progress is silent; groups are listed on completion
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete lists the groups and displays the summary
func (f *HumanFormatter) Complete(report *models.ScanReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil {
		f.writer = os.Stdout
	}
	return writeHuman(f.writer, report, f.Quiet)
}

// writeHuman renders a report; shared with the progress formatter
func writeHuman(w io.Writer, report *models.ScanReport, quiet bool) error {
	if quiet {
		for i, g := range report.Groups {
			if i > 0 {
				fmt.Fprintln(w)
			}
			for _, p := range g.Paths {
				fmt.Fprintln(w, p)
			}
		}
		return nil
	}

	for i, g := range report.Groups {
		bold.Fprintf(w, "\n[%d] %d files x %s", i+1, g.Count(), humanize.IBytes(uint64(g.Size)))
		faint.Fprintf(w, "  (%s reclaimable)\n", humanize.IBytes(uint64(g.WastedBytes())))
		for j, p := range g.Paths {
			if j == 0 {
				fmt.Fprintf(w, "    %s\n", p)
			} else {
				yellow.Fprintf(w, "    %s\n", p)
			}
		}
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Scan completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Root:             %s\n", report.Root)
	fmt.Fprintf(w, "  Strategy:         %s\n", report.Strategy)
	fmt.Fprintf(w, "  Files cataloged:  %d (%s)\n", report.Stats.FilesCataloged, humanize.IBytes(uint64(report.Stats.BytesCataloged)))
	fmt.Fprintf(w, "  Files considered: %d\n", report.Stats.FilesConsidered)
	fmt.Fprintf(w, "  Size groups:      %d (%d with candidates)\n", report.Stats.Buckets, report.Stats.CandidateBuckets)
	fmt.Fprintf(w, "  Comparisons:      %d (%s read)\n", report.Stats.Comparisons.Load(), humanize.IBytes(uint64(report.Stats.BytesCompared.Load())))
	if n := report.Stats.FilesHashed.Load(); n > 0 {
		fmt.Fprintf(w, "  Files hashed:     %d\n", n)
	}
	fmt.Fprintf(w, "  Duplicate groups: %d (%d files)\n", report.Stats.DuplicateGroups, report.Stats.DuplicateFiles)
	fmt.Fprintf(w, "  Reclaimable:      %s\n", humanize.IBytes(uint64(report.Stats.WastedBytes)))
	fmt.Fprintf(w, "\n")

	if report.Status == models.StatusClean {
		green.Fprintf(w, "Status: %s\n", report.Status)
	} else {
		fmt.Fprintf(w, "Status: %s\n", report.Status)
	}

	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	red.Fprintf(color.Error, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
