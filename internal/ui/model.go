// Package ui provides the Bubbletea terminal interface for mixdown runs.
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RunStatus represents the state of one mix run.
type RunStatus int

const (
	StatusQueued RunStatus = iota
	StatusAnalyzing
	StatusSelecting
	StatusProcessing
	StatusAssembling
	StatusMastering
	StatusComplete
	StatusError
)

// RunProgress tracks one source file's journey through the pipeline.
type RunProgress struct {
	InputPath  string
	OutputPath string
	Theme      string
	Status     RunStatus

	Stage       string
	StageDetail string
	Fraction    float64 // 0.0 to 1.0 within the current stage
	StartTime   time.Time
	ElapsedTime time.Duration

	// Completion results
	SegmentCount int
	MixDuration  float64
	Confidence   float64
	Method       string

	Error error
}

// Model is the Bubbletea model for the mixing UI.
type Model struct {
	Runs          []RunProgress
	CurrentIndex  int
	TotalRuns     int
	CompletedRuns int
	FailedRuns    int

	StartTime time.Time
	Done      bool

	Width  int
	Height int
}

// NewModel creates a UI model with the given input files queued.
func NewModel(inputFiles []string, themeName string) Model {
	runs := make([]RunProgress, len(inputFiles))
	for i, path := range inputFiles {
		runs[i] = RunProgress{
			InputPath: path,
			Theme:     themeName,
			Status:    StatusQueued,
		}
	}
	return Model{
		Runs:         runs,
		CurrentIndex: -1,
		TotalRuns:    len(inputFiles),
		StartTime:    time.Now(),
	}
}

// Init initializes the model. Progress arrives via Program.Send, so there is
// no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case RunStartMsg:
		m.CurrentIndex = msg.FileIndex
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Runs) {
			m.Runs[m.CurrentIndex].Status = StatusAnalyzing
			m.Runs[m.CurrentIndex].StartTime = time.Now()
		}

	case ProgressMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Runs) {
			m.Runs[msg.FileIndex] = updateRunProgress(m.Runs[msg.FileIndex], msg)
		}

	case RunCompleteMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Runs) {
			run := &m.Runs[msg.FileIndex]
			run.OutputPath = msg.OutputPath
			run.SegmentCount = msg.SegmentCount
			run.MixDuration = msg.MixDuration
			run.Confidence = msg.Confidence
			run.Method = msg.Method
			run.Error = msg.Error
			if msg.Error != nil {
				run.Status = StatusError
				m.FailedRuns++
			} else {
				run.Status = StatusComplete
				m.CompletedRuns++
			}
		}

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nQueued: %d\n", len(m.Runs))
	}
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderMixingView(m)
}

// updateRunProgress folds a stage update into a run's state.
func updateRunProgress(run RunProgress, msg ProgressMsg) RunProgress {
	if msg.Stage != run.Stage {
		run.StartTime = time.Now()
	}
	run.Stage = msg.Stage
	run.StageDetail = msg.Message
	run.Fraction = msg.Fraction
	run.ElapsedTime = time.Since(run.StartTime)
	run.Status = statusForStage(msg.Stage)
	return run
}

func statusForStage(stage string) RunStatus {
	switch stage {
	case "analyze":
		return StatusAnalyzing
	case "select":
		return StatusSelecting
	case "process":
		return StatusProcessing
	case "assemble":
		return StatusAssembling
	case "master":
		return StatusMastering
	default:
		return StatusAnalyzing
	}
}
