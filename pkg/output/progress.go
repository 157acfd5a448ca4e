package output

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/sdejongh/dupnorris/pkg/models"
)

const progressTemplate pb.ProgressBarTemplate = `{{string . "prefix"}}{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{string . "groups"}} {{etime . }}`

// ProgressFormatter draws a bar over verified size groups on stderr and
// prints the human summary on completion
type ProgressFormatter struct {
	mu     sync.Mutex
	bar    *pb.ProgressBar
	barOut io.Writer
	groups int

	summary *HumanFormatter
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{
		barOut:  os.Stderr,
		summary: NewHumanFormatter(),
	}
}

// termWidth returns the width of w when it is a terminal, else 0
func termWidth(w io.Writer) int {
	if file, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 0
}

// Start initializes the bar. writer receives the summary; the bar itself
// goes to stderr.
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int, totalBytes int64, totalBuckets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.summary.setWriter(writer)

	if totalBuckets == 0 {
		return nil
	}

	bar := progressTemplate.New(totalBuckets).
		SetWriter(f.barOut).
		SetRefreshRate(200*time.Millisecond).
		Set("prefix", fmt.Sprintf("%d files (%s) ", totalFiles, humanize.IBytes(uint64(totalBytes)))).
		Set("groups", "0 duplicate groups")
	if width := termWidth(f.barOut); width > 0 {
		bar.SetWidth(width)
	}
	f.bar = bar.Start()
	f.groups = 0

	return nil
}

// Progress advances the bar by one size group
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil || update.Type != "bucket_complete" {
		return nil
	}

	f.groups += update.GroupsFound
	f.bar.Set("groups", fmt.Sprintf("%d duplicate groups", f.groups))
	f.bar.SetCurrent(int64(update.CurrentBucket))
	return nil
}

// finish stops the bar; caller holds the lock
func (f *ProgressFormatter) finish() {
	if f.bar != nil && !f.bar.IsFinished() {
		f.bar.Finish()
	}
}

// Complete finishes the bar and prints the summary
func (f *ProgressFormatter) Complete(report *models.ScanReport) error {
	f.mu.Lock()
	f.finish()
	f.mu.Unlock()

	return f.summary.Complete(report)
}

// Error finishes the bar and reports the error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.SetErr(err)
	}
	f.finish()
	f.mu.Unlock()

	return f.summary.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
