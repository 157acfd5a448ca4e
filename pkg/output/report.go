package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/dupnorris/pkg/models"
)

// WriteReport writes the duplicate groups to a file.
// Format can be "human" or "json". A scan without groups writes no file.
func WriteReport(report *models.ScanReport, filepath string, format string) error {
	if len(report.Groups) == 0 {
		return nil
	}

	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeReportJSON(report, file)
	default: // "human"
		err = writeReportHuman(report, file)
	}
	if err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return file.Close()
}

// writeReportHuman writes the groups in a plain-text layout
func writeReportHuman(report *models.ScanReport, w io.Writer) error {
	fmt.Fprintf(w, "Duplicates Report\n")
	fmt.Fprintf(w, "=================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Root: %s\n", report.Root)
	fmt.Fprintf(w, "Recursive: %v\n", report.Recursive)
	fmt.Fprintf(w, "Strategy: %s\n\n", report.Strategy)

	fmt.Fprintf(w, "Total Groups: %d (%d files, %s reclaimable)\n\n",
		report.Stats.DuplicateGroups, report.Stats.DuplicateFiles,
		humanize.IBytes(uint64(report.Stats.WastedBytes)))

	for i, g := range report.Groups {
		label := fmt.Sprintf("Group %d: %d files of %s", i+1, g.Count(), humanize.IBytes(uint64(g.Size)))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, p := range g.Paths {
			fmt.Fprintf(w, "  %s\n", p)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeReportJSON writes the report document
func writeReportJSON(report *models.ScanReport, w io.Writer) error {
	output := struct {
		Generated string `json:"generated"`
		JSONReport
	}{
		Generated:  time.Now().Format(time.RFC3339),
		JSONReport: NewJSONReport(report),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
