package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clipforge/mixdown/internal/audio"
	"github.com/clipforge/mixdown/internal/cli"
	"github.com/clipforge/mixdown/internal/config"
	"github.com/clipforge/mixdown/internal/dsp"
	"github.com/clipforge/mixdown/internal/logging"
	"github.com/clipforge/mixdown/internal/mains"
	"github.com/clipforge/mixdown/internal/metrics"
	"github.com/clipforge/mixdown/internal/pipeline"
	"github.com/clipforge/mixdown/internal/theme"
	"github.com/clipforge/mixdown/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version     bool     `short:"v" help:"Show version information"`
	Theme       string   `short:"t" help:"Mix theme (best-of, media-meltdown, conspiracy-corner, donation-nation, musical-mayhem)"`
	Config      string   `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	Logs        bool     `help:"Save detailed run reports"`
	MetricsAddr string   `help:"Serve Prometheus metrics on this address (e.g. :9091)"`
	Files       []string `arg:"" name:"files" help:"WAV files to mix" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("mixdown"),
		kong.Description("Intelligent highlight mixer for long-form audio"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	// Load run configuration; flags beat config values
	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	themeName := cfg.Theme
	if cliArgs.Theme != "" {
		themeName = cliArgs.Theme
	}
	metricsAddr := cfg.MetricsAddr
	if cliArgs.MetricsAddr != "" {
		metricsAddr = cliArgs.MetricsAddr
	}
	themeKey := theme.ParseKey(themeName)
	profile := cfg.Overrides().Apply(themeKey)
	humHz := mains.ParseOverride(cfg.Hum)

	// Open debug log file
	debugLog, _ := os.Create("mixdown-debug.log")
	defer debugLog.Close()
	log := func(format string, args ...interface{}) {
		if debugLog != nil {
			fmt.Fprintf(debugLog, format+"\n", args...)
		}
	}

	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New(nil)
		metrics.Serve(metricsAddr, func(err error) {
			log("[MAIN] metrics server: %v", err)
		})
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(cliArgs.Files, themeKey.String())

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start processing in background
	go func() {
		for i, inputPath := range cliArgs.Files {
			runStart := time.Now()

			log("[MAIN] Sending RunStartMsg for file %d: %s", i, inputPath)
			p.Send(ui.RunStartMsg{
				FileIndex: i,
				FileName:  inputPath,
				Theme:     themeKey.String(),
			})

			log("[MAIN] Reading %s", inputPath)
			source, meta, err := audio.ReadWAV(inputPath)
			if err != nil {
				log("[MAIN] ReadWAV failed: %v", err)
				p.Send(ui.RunCompleteMsg{FileIndex: i, Error: err})
				continue
			}
			log("[MAIN] Loaded %.1fs, %d Hz, %d ch", meta.Duration, meta.SampleRate, meta.Channels)

			pipe := &pipeline.Pipeline{
				Params: pipeline.Params{
					Theme:          themeKey,
					Profile:        profile,
					HumHz:          humHz,
					TargetCount:    cfg.TargetCount,
					MinDuration:    cfg.MinDuration,
					MaxDuration:    cfg.MaxDuration,
					TargetDuration: cfg.TargetDuration,
					Workers:        cfg.Workers,
					SegmentTimeout: time.Duration(cfg.SegmentTimeout) * time.Second,
				},
				Metrics: m,
				Progress: func(prog pipeline.Progress) {
					p.Send(ui.ProgressMsg{
						FileIndex: i,
						Stage:     prog.Stage,
						Fraction:  prog.Fraction,
						Message:   prog.Message,
					})
				},
				Logf: log,
			}

			result, err := pipe.Run(context.Background(), source)
			if err != nil {
				log("[MAIN] Run failed: %v", err)
				p.Send(ui.RunCompleteMsg{FileIndex: i, Error: err})
				continue
			}

			outputPath := pipeline.OutputPath(inputPath, themeKey.Slug())
			if err := pipeline.Export(outputPath, result); err != nil {
				log("[MAIN] Export failed: %v", err)
				p.Send(ui.RunCompleteMsg{FileIndex: i, Error: err})
				continue
			}
			log("[MAIN] Wrote %s", outputPath)

			// Write the run report if --logs flag is set
			if cliArgs.Logs {
				reportData := logging.ReportData{
					InputPath:      inputPath,
					OutputPath:     outputPath,
					StartTime:      runStart,
					EndTime:        time.Now(),
					SampleRate:     meta.SampleRate,
					Channels:       meta.Channels,
					SourceDuration: meta.Duration,
					Profile:        profile,
					HumHz:          humHz,
					Chain:          dsp.FromProfile(profile, humHz).StageNames(),
					Metadata:       result.Metadata,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					log("[MAIN] Failed to generate report: %v", err)
				}
			}

			log("[MAIN] Sending RunCompleteMsg for file %d", i)
			p.Send(ui.RunCompleteMsg{
				FileIndex:    i,
				OutputPath:   outputPath,
				SegmentCount: result.Metadata.SegmentCount,
				MixDuration:  result.Metadata.TotalDuration,
				Confidence:   result.Metadata.AverageConfidence,
				Method:       result.Metadata.SelectionMethod,
			})
		}

		// Signal all complete
		log("[MAIN] Sending AllCompleteMsg")
		p.Send(ui.AllCompleteMsg{})
	}()

	// Run the program
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}
