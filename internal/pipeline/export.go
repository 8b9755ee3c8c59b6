package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipforge/mixdown/internal/audio"
)

// Export writes the mastered mix as 16-bit PCM WAV plus a JSON metadata
// sidecar with the same stem. Export failures are terminal and never
// retried here.
func Export(wavPath string, res *Result) error {
	if err := audio.WriteWAV(wavPath, res.Mix); err != nil {
		return &ExportError{Path: wavPath, Err: err}
	}

	sidecar := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + ".json"
	data, err := json.MarshalIndent(res.Metadata, "", "  ")
	if err != nil {
		return &ExportError{Path: sidecar, Err: err}
	}
	if err := os.WriteFile(sidecar, data, 0o644); err != nil {
		return &ExportError{Path: sidecar, Err: err}
	}
	return nil
}

// OutputPath derives the mix filename from the source and theme:
// <stem>-<theme-slug>-mix.wav in the source's directory.
func OutputPath(inputPath, themeSlug string) string {
	dir := filepath.Dir(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, stem+"-"+themeSlug+"-mix.wav")
}
