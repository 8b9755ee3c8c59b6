package ui

// ProgressMsg carries a pipeline stage update for the active run.
type ProgressMsg struct {
	FileIndex int
	Stage     string  // "analyze", "select", "process", "assemble", "master"
	Fraction  float64 // 0.0 to 1.0 within the stage
	Message   string
}

// RunStartMsg indicates a new source file has started its mix run.
type RunStartMsg struct {
	FileIndex int
	FileName  string
	Theme     string
}

// RunCompleteMsg indicates a mix run has finished, successfully or not.
type RunCompleteMsg struct {
	FileIndex    int
	OutputPath   string
	SegmentCount int
	MixDuration  float64
	Confidence   float64
	Method       string
	Error        error
}

// AllCompleteMsg indicates every queued file has been processed.
type AllCompleteMsg struct{}
