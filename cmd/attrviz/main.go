package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/solardome/attrviz/internal/attrviz"
	"github.com/solardome/attrviz/internal/ingest"
	"github.com/solardome/attrviz/internal/render"
	"github.com/solardome/attrviz/internal/report"
)

type inputList []string

func (s *inputList) String() string { return strings.Join(*s, ",") }
func (s *inputList) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	*s = append(*s, v)
	return nil
}

func main() {
	var inputs inputList
	var settingsPath string
	var styleName string
	var outHTML string
	var outJSON string
	var checksumsPath string
	var runLogPath string
	var noHTML bool
	var preview bool
	var watch bool
	var printSchema bool

	flag.Var(&inputs, "in", "Path to a phrase file: JSON pairs, JSON document or TSV (repeatable)")
	flag.StringVar(&settingsPath, "settings", "", "Path to settings YAML or TOML")
	flag.StringVar(&styleName, "style", "", "Default style for phrases without one: font_size or font_color")
	flag.StringVar(&outHTML, "out-html", report.DefaultHTMLName, "Output HTML path")
	flag.StringVar(&outJSON, "out-json", "", "Output report JSON path (disabled when empty)")
	flag.StringVar(&checksumsPath, "checksums", "", "Output checksums.sha256 path (default next to out-html)")
	flag.StringVar(&runLogPath, "run-log", "", "Output run log path (default next to out-html)")
	flag.BoolVar(&noHTML, "no-html", false, "Disable HTML output")
	flag.BoolVar(&preview, "preview", false, "Print a styled preview of the table to stdout")
	flag.BoolVar(&watch, "watch", false, "Re-run whenever an input or the settings file changes")
	flag.BoolVar(&printSchema, "print-schema", false, "Print the JSON schema of the phrase document format and exit")
	flag.Parse()

	if printSchema {
		b, err := ingest.Schema()
		if err != nil {
			fmt.Fprintln(os.Stderr, "attrviz error:", err)
			os.Exit(2)
		}
		fmt.Println(string(b))
		return
	}

	if strings.TrimSpace(checksumsPath) == "" {
		checksumsPath = report.DefaultChecksumsPath(outHTML)
	}
	if strings.TrimSpace(runLogPath) == "" {
		runLogPath = report.DefaultRunLogPath(outHTML)
	}
	cfg := attrviz.Config{
		InputPaths:    inputs,
		SettingsPath:  settingsPath,
		Style:         styleName,
		OutHTMLPath:   outHTML,
		OutJSONPath:   outJSON,
		ChecksumsPath: checksumsPath,
		RunLogPath:    runLogPath,
		WriteHTML:     !noHTML,
	}
	summarize := func(res attrviz.Result) {
		if preview {
			fmt.Println(render.Terminal(res.Rows, res.Settings.TerminalOptions()))
		}
		html := outHTML
		if noHTML {
			html = "-"
		}
		fmt.Printf("run_id=%s phrases=%d width=%d html=%s checksums=%s run_log=%s\n", res.RunID, len(res.Rows), res.Width, html, checksumsPath, runLogPath)
	}

	if watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := attrviz.Watch(ctx, cfg, func(res attrviz.Result, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, "attrviz error:", err)
				return
			}
			summarize(res)
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "attrviz error:", err)
			os.Exit(2)
		}
		return
	}

	res, err := attrviz.Run(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "attrviz error:", err)
		os.Exit(2)
	}
	summarize(res)
}
