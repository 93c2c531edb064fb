package attrviz

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/solardome/attrviz/internal/colormap"
	"github.com/solardome/attrviz/internal/ingest"
	"github.com/solardome/attrviz/internal/render"
	"github.com/solardome/attrviz/internal/report"
	"github.com/solardome/attrviz/internal/style"
	"github.com/solardome/attrviz/internal/table"
)

func withDefaults(cfg Config) Config {
	if strings.TrimSpace(cfg.OutHTMLPath) == "" {
		cfg.OutHTMLPath = report.DefaultHTMLName
	}
	if strings.TrimSpace(cfg.ChecksumsPath) == "" {
		cfg.ChecksumsPath = report.DefaultChecksumsPath(cfg.OutHTMLPath)
	}
	if strings.TrimSpace(cfg.RunLogPath) == "" {
		cfg.RunLogPath = report.DefaultRunLogPath(cfg.OutHTMLPath)
	}
	if cfg.Lookup == nil {
		cfg.Lookup = os.LookupEnv
	}
	return cfg
}

// Run reads every input, accumulates its phrases in order and writes the
// requested artifacts.
func Run(cfg Config) (Result, error) {
	cfg = withDefaults(cfg)

	// An unwritable run log never fails the run; a nil logger discards.
	log, _ := report.NewRunLogger(cfg.RunLogPath)
	defer log.Close()
	log.Info("run.start", report.Fields{
		"input_count":   len(cfg.InputPaths),
		"settings_path": cfg.SettingsPath,
		"style":         cfg.Style,
		"out_html":      cfg.OutHTMLPath,
		"out_json":      cfg.OutJSONPath,
		"write_html":    cfg.WriteHTML,
	})

	if len(cfg.InputPaths) == 0 {
		err := errors.New("at least one -in path is required")
		log.Error("run.ingest.error", err, nil)
		return Result{}, err
	}

	settings, settingsDigest, err := resolveSettings(cfg, cfg.Lookup)
	if err != nil {
		log.Error("run.settings.error", err, report.Fields{"path": cfg.SettingsPath})
		return Result{}, err
	}
	cmap, err := colormap.Named(settings.Style.Colormap)
	if err != nil {
		log.Error("run.settings.error", err, nil)
		return Result{}, err
	}
	mapper, err := style.NewMapper(settings.NumBins, settings.lookup(), cmap)
	if err != nil {
		log.Error("run.settings.error", err, nil)
		return Result{}, err
	}
	acc, err := table.New(settings.accumulatorOptions())
	if err != nil {
		log.Error("run.settings.error", err, nil)
		return Result{}, err
	}
	log.Info("run.settings.ok", report.Fields{
		"num_bins":       settings.NumBins,
		"default_style":  settings.DefaultStyle,
		"binning_method": settings.Binning.Method,
		"binning_scope":  settings.Binning.Scope,
		"colormap":       settings.Style.Colormap,
	})

	var inputs []InputDigest
	if settingsDigest != nil {
		inputs = append(inputs, *settingsDigest)
	}
	for _, path := range cfg.InputPaths {
		digest, phrases, err := readInput(path, settings)
		inputs = append(inputs, digest)
		if err != nil {
			log.Error("run.ingest.error", err, report.Fields{"path": path})
			return Result{}, err
		}
		log.Info("run.ingest.ok", report.Fields{"path": path, "kind": digest.Kind, "phrases": len(phrases)})
		if err := appendPhrases(acc, phrases, settings.DefaultStyle); err != nil {
			err = fmt.Errorf("append phrases from %s: %w", path, err)
			log.Error("run.append.error", err, report.Fields{"path": path})
			return Result{}, err
		}
	}

	rows, err := acc.Rows(mapper)
	if err != nil {
		log.Error("run.append.error", err, nil)
		return Result{}, err
	}
	res := Result{
		RunID:    stableRunID(inputs, settings),
		Settings: settings,
		Inputs:   inputs,
		Rows:     rows,
		Width:    acc.Width(),
		Lookup:   acc.Lookup(),
	}

	var artifactPaths []string
	if cfg.WriteHTML {
		if err := render.WriteHTMLFile(cfg.OutHTMLPath, rows, settings.htmlOptions()); err != nil {
			log.Error("run.render_html.error", err, report.Fields{"path": cfg.OutHTMLPath})
			return Result{}, err
		}
		artifactPaths = append(artifactPaths, cfg.OutHTMLPath)
	}
	if strings.TrimSpace(cfg.OutJSONPath) != "" {
		if err := report.WriteJSON(cfg.OutJSONPath, buildReport(res)); err != nil {
			log.Error("run.report_json.error", err, report.Fields{"path": cfg.OutJSONPath})
			return Result{}, err
		}
		artifactPaths = append(artifactPaths, cfg.OutJSONPath)
	}
	if len(artifactPaths) > 0 {
		sums, err := report.WriteChecksums(cfg.ChecksumsPath, artifactPaths)
		if err != nil {
			log.Error("run.checksums.error", err, report.Fields{"path": cfg.ChecksumsPath})
			return Result{}, err
		}
		res.Artifacts = sums
	}

	log.Info("run.complete", report.Fields{
		"run_id":       res.RunID,
		"phrases":      len(rows),
		"width":        res.Width,
		"words":        len(res.Lookup),
		"html_written": cfg.WriteHTML,
		"report_json":  cfg.OutJSONPath,
		"checksums":    cfg.ChecksumsPath,
	})
	return res, nil
}

func readInput(path string, settings Settings) (InputDigest, []ingest.Phrase, error) {
	digest := InputDigest{Kind: "phrases", Path: path}
	b, err := os.ReadFile(path)
	if err != nil {
		return digest, nil, fmt.Errorf("input file unreadable %s: %w", path, err)
	}
	digest.SHA256 = report.SHA256Hex(b)
	digest.ReadOK = true

	format, phrases, err := ingest.Parse(b, ingest.Options{NormalizeNFC: settings.Ingest.NormalizeNFC})
	if format != "" {
		digest.Kind = "phrases_" + string(format)
	}
	if err != nil {
		return digest, nil, fmt.Errorf("input parse failed %s: %w", path, err)
	}
	digest.Phrases = len(phrases)
	return digest, phrases, nil
}

// appendPhrases resolves each phrase's style and appends runs of phrases
// sharing a style together, so the lookup is rebuilt once per run.
func appendPhrases(acc *table.Accumulator, phrases []ingest.Phrase, defaultStyle string) error {
	modes := make([]style.Mode, len(phrases))
	for i, p := range phrases {
		name := p.Style
		if strings.TrimSpace(name) == "" {
			name = defaultStyle
		}
		mode, err := style.ParseMode(name)
		if err != nil {
			return fmt.Errorf("phrase %d: %w", i, err)
		}
		modes[i] = mode
	}
	for start := 0; start < len(phrases); {
		end := start + 1
		for end < len(phrases) && modes[end] == modes[start] {
			end++
		}
		batch := make([][]table.WordScore, 0, end-start)
		for _, p := range phrases[start:end] {
			batch = append(batch, p.Words)
		}
		if err := acc.AppendAll(batch, modes[start]); err != nil {
			return fmt.Errorf("phrases %d-%d: %w", start, end-1, err)
		}
		start = end
	}
	return nil
}

func buildReport(res Result) Report {
	rows := res.Rows
	if rows == nil {
		rows = []table.Row{}
	}
	return Report{
		SchemaVersion: ReportSchemaVersion,
		RunID:         res.RunID,
		Inputs:        res.Inputs,
		Settings:      res.Settings,
		Width:         res.Width,
		Phrases:       rows,
		Lookup:        res.Lookup,
	}
}
