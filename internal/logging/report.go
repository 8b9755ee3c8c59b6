package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipforge/mixdown/internal/pipeline"
	"github.com/clipforge/mixdown/internal/theme"
)

// ReportData gathers everything the run report needs.
type ReportData struct {
	InputPath  string
	OutputPath string
	StartTime  time.Time
	EndTime    time.Time

	SampleRate     int
	Channels       int
	SourceDuration float64

	Profile  theme.Profile
	HumHz    float64
	Chain    []string // stage names, in processing order
	Metadata pipeline.Metadata
}

// GenerateReport writes a plain-text run report next to the mix, named
// <output stem>-report.log.
func GenerateReport(data ReportData) error {
	path := strings.TrimSuffix(data.OutputPath, filepath.Ext(data.OutputPath)) + "-report.log"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	rule := strings.Repeat("=", 70)
	fmt.Fprintln(f, rule)
	fmt.Fprintf(f, "MIX REPORT: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(f, "Run ID: %s\n", data.Metadata.RunID)
	fmt.Fprintln(f, rule)
	fmt.Fprintln(f)

	fmt.Fprintf(f, "Source:      %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Duration:    %s\n", formatHMS(data.SourceDuration))
	fmt.Fprintf(f, "Sample Rate: %d Hz\n", data.SampleRate)
	fmt.Fprintf(f, "Channels:    %s\n", channelName(data.Channels))
	fmt.Fprintf(f, "Theme:       %s\n", data.Metadata.Theme)
	if data.Metadata.Tempo > 0 {
		fmt.Fprintf(f, "Tempo:       %.0f BPM (estimated)\n", data.Metadata.Tempo)
	}
	fmt.Fprintln(f)

	writeSection(f, "SEGMENTS")
	fmt.Fprintf(f, "  Selection method: %s\n", data.Metadata.SelectionMethod)
	fmt.Fprintf(f, "  Average confidence: %.2f\n\n", data.Metadata.AverageConfidence)
	fmt.Fprint(f, indent(segmentTable(data.Metadata.Segments), "  "))
	fmt.Fprintln(f)

	writeSection(f, "PROCESSING CHAIN")
	if data.HumHz > 0 {
		fmt.Fprintf(f, "  Mains hum notch at %.0f Hz\n", data.HumHz)
	}
	for i, stage := range data.Chain {
		fmt.Fprintf(f, "  %d. %s\n", i+1, stage)
	}
	fmt.Fprintf(f, "  Transition: %s", data.Profile.Transition.Kind)
	if data.Profile.Transition.Kind != theme.HardCut {
		fmt.Fprintf(f, " (%d ms)", data.Profile.Transition.Millis)
	}
	fmt.Fprintln(f)
	fmt.Fprintln(f)

	writeSection(f, "RESULT")
	fmt.Fprintf(f, "  Mix duration: %s\n", formatHMS(data.Metadata.TotalDuration))
	fmt.Fprintf(f, "  Segments in mix: %d\n", data.Metadata.SegmentCount)
	fmt.Fprintf(f, "  Wall time: %.1fs\n", data.EndTime.Sub(data.StartTime).Seconds())
	fmt.Fprintln(f)

	if len(data.Metadata.Warnings) > 0 {
		writeSection(f, "WARNINGS")
		for _, w := range data.Metadata.Warnings {
			fmt.Fprintf(f, "  - %s\n", w)
		}
		fmt.Fprintln(f)
	}

	fmt.Fprintln(f, rule)
	fmt.Fprintf(f, "Generated %s\n", data.Metadata.GeneratedAt.Format(time.RFC3339))
	return nil
}

func segmentTable(segments []pipeline.SegmentInfo) string {
	t := &Table{Headers: []string{"Start", "Duration", "Confidence"}}
	for i, s := range segments {
		t.Rows = append(t.Rows, Row{
			Label: fmt.Sprintf("Segment %d", i+1),
			Values: []string{
				formatHMS(s.StartTime),
				fmt.Sprintf("%.1fs", s.Duration),
				fmt.Sprintf("%.2f", s.Confidence),
			},
			Note: s.Method,
		})
	}
	return t.String()
}

func writeSection(f *os.File, title string) {
	fmt.Fprintf(f, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatHMS(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func channelName(channels int) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
