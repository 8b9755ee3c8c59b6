package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stageNames maps run status to the label shown in the progress box.
var stageNames = map[RunStatus]string{
	StatusAnalyzing:  "Analyzing audio",
	StatusSelecting:  "Selecting segments",
	StatusProcessing: "Processing segments",
	StatusAssembling: "Assembling mix",
	StatusMastering:  "Mastering",
}

// renderMixingView renders the main in-progress view.
func renderMixingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")
	b.WriteString(renderRunQueue(m))
	b.WriteString("\n\n")
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header.
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5F5FD7")).
		Render("Mixdown 🎛  - Intelligent Highlight Mixer")

	theme := ""
	if len(m.Runs) > 0 {
		theme = fmt.Sprintf(" | Theme: %s", m.Runs[0].Theme)
	}
	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Mixing %d file(s)%s", m.TotalRuns, theme))

	return title + "\n" + subtitle
}

// renderRunQueue renders the list of runs with their status.
func renderRunQueue(m Model) string {
	var b strings.Builder
	for i, run := range m.Runs {
		b.WriteString(renderRunEntry(run, i == m.CurrentIndex))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRunEntry renders a single run in the queue.
func renderRunEntry(run RunProgress, active bool) string {
	fileName := filepath.Base(run.InputPath)

	switch run.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		summary := fmt.Sprintf("%d segments | %.0fs mix | confidence %.2f (%s)",
			run.SegmentCount, run.MixDuration, run.Confidence, run.Method)
		return fmt.Sprintf(" %s %s → %s\n   %s", icon, fileName, filepath.Base(run.OutputPath), summary)

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, run.Error)

	case StatusQueued:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)

	default:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, fileName, renderRunDetails(run))
	}
}

// renderRunDetails renders the progress box for the active run.
func renderRunDetails(run RunProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5F5FD7")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	stage := stageNames[run.Status]
	if stage == "" {
		stage = "Working"
	}
	content.WriteString(stage + "\n")
	content.WriteString(renderProgressBar(run.Fraction, 40))
	content.WriteString("\n")

	if run.StageDetail != "" {
		content.WriteString(run.StageDetail + "\n")
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs", run.ElapsedTime.Seconds()))

	return box.Render(content.String())
}

// renderProgressBar renders a text progress bar.
func renderProgressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %d%%", bar, int(fraction*100))
}

// renderOverallProgress renders the footer box.
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Runs) {
		content = fmt.Sprintf("Mixing file %d of %d (%d complete)",
			m.CurrentIndex+1, m.TotalRuns, m.CompletedRuns)
	} else {
		content = fmt.Sprintf("Overall: %d/%d complete", m.CompletedRuns, m.TotalRuns)
	}
	return box.Render(content)
}

// renderCompletionSummary renders the final screen.
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Mixing Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, run := range m.Runs {
		switch run.Status {
		case StatusComplete:
			icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
			fmt.Fprintf(&b, " %s %s → %s\n   %d segments | %.0fs | confidence %.2f (%s)\n",
				icon, filepath.Base(run.InputPath), filepath.Base(run.OutputPath),
				run.SegmentCount, run.MixDuration, run.Confidence, run.Method)
		case StatusError:
			icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
			fmt.Fprintf(&b, " %s %s\n   Error: %v\n", icon, filepath.Base(run.InputPath), run.Error)
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	if m.FailedRuns == 0 {
		fmt.Fprintf(&b, "All %d mix(es) mastered and peak-normalized ✓\n", m.CompletedRuns)
	} else {
		fmt.Fprintf(&b, "%d mix(es) complete, %d failed\n", m.CompletedRuns, m.FailedRuns)
	}

	return b.String()
}
