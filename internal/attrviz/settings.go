package attrviz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/solardome/attrviz/internal/colormap"
	"github.com/solardome/attrviz/internal/render"
	"github.com/solardome/attrviz/internal/report"
	"github.com/solardome/attrviz/internal/style"
	"github.com/solardome/attrviz/internal/table"
)

const maxScorePrecision = 10

var ErrInvalidSettings = errors.New("invalid settings")

func DefaultSettings() Settings {
	lookup := style.DefaultLookup()
	return Settings{
		NumBins:      table.DefaultNumBins,
		DefaultStyle: string(style.FontSize),
		Binning: BinningSettings{
			Method: string(table.MethodQuantile),
			Scope:  string(table.ScopePhrase),
		},
		Style: StyleSettings{
			FontSizes:      lookup.FontSizes,
			ColorPositions: lookup.ColorPositions,
			DarkenBelow:    lookup.DarkenBelow,
			Colormap:       colormap.DefaultName,
		},
		Render: RenderSettings{
			Title:          render.DefaultTitle,
			DarkBackground: render.DefaultDarkBackground,
			ScorePrecision: render.DefaultPrecision,
			CellWidth:      render.DefaultCellWidth,
		},
	}
}

// settingsOverlay is what a settings file may contain. Nil fields keep the
// value underneath.
type settingsOverlay struct {
	NumBins      *int            `json:"num_bins" toml:"num_bins"`
	DefaultStyle *string         `json:"default_style" toml:"default_style"`
	Binning      *binningOverlay `json:"binning" toml:"binning"`
	Style        *styleOverlay   `json:"style" toml:"style"`
	Render       *renderOverlay  `json:"render" toml:"render"`
	Ingest       *ingestOverlay  `json:"ingest" toml:"ingest"`
}

type binningOverlay struct {
	Method *string `json:"method" toml:"method"`
	Scope  *string `json:"scope" toml:"scope"`
}

type styleOverlay struct {
	FontSizes      []int     `json:"font_sizes" toml:"font_sizes"`
	ColorPositions []float64 `json:"color_positions" toml:"color_positions"`
	DarkenBelow    *int      `json:"darken_below" toml:"darken_below"`
	Colormap       *string   `json:"colormap" toml:"colormap"`
}

type renderOverlay struct {
	Title          *string `json:"title" toml:"title"`
	DarkBackground *string `json:"dark_background" toml:"dark_background"`
	ScorePrecision *int    `json:"score_precision" toml:"score_precision"`
	CellWidth      *int    `json:"cell_width" toml:"cell_width"`
}

type ingestOverlay struct {
	NormalizeNFC *bool `json:"normalize_nfc" toml:"normalize_nfc"`
}

func (o settingsOverlay) apply(s *Settings) {
	setInt(&s.NumBins, o.NumBins)
	setString(&s.DefaultStyle, o.DefaultStyle)
	if b := o.Binning; b != nil {
		setString(&s.Binning.Method, b.Method)
		setString(&s.Binning.Scope, b.Scope)
	}
	if st := o.Style; st != nil {
		if st.FontSizes != nil {
			s.Style.FontSizes = append([]int(nil), st.FontSizes...)
		}
		if st.ColorPositions != nil {
			s.Style.ColorPositions = append([]float64(nil), st.ColorPositions...)
		}
		setInt(&s.Style.DarkenBelow, st.DarkenBelow)
		setString(&s.Style.Colormap, st.Colormap)
	}
	if r := o.Render; r != nil {
		setString(&s.Render.Title, r.Title)
		setString(&s.Render.DarkBackground, r.DarkBackground)
		setInt(&s.Render.ScorePrecision, r.ScorePrecision)
		setInt(&s.Render.CellWidth, r.CellWidth)
	}
	if in := o.Ingest; in != nil && in.NormalizeNFC != nil {
		s.Ingest.NormalizeNFC = *in.NormalizeNFC
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// loadSettingsFile merges the file at path over the defaults. The returned
// digest is recorded with the run inputs.
func loadSettingsFile(path string) (Settings, InputDigest, error) {
	s := DefaultSettings()
	ext := strings.ToLower(filepath.Ext(path))
	digest := InputDigest{Kind: "settings" + strings.ReplaceAll(ext, ".", "_"), Path: path}

	b, err := os.ReadFile(path)
	if err != nil {
		return s, digest, fmt.Errorf("settings file unreadable %s: %w", path, err)
	}
	digest.SHA256 = report.SHA256Hex(b)
	digest.ReadOK = true

	var overlay settingsOverlay
	switch ext {
	case ".yaml", ".yml":
		err = decodeSettingsYAML(path, b, &overlay)
	case ".toml":
		err = decodeSettingsTOML(path, b, &overlay)
	default:
		err = fmt.Errorf("%w: unsupported settings file extension %q (want .yaml, .yml or .toml)", ErrInvalidSettings, ext)
	}
	if err != nil {
		return s, digest, err
	}
	overlay.apply(&s)
	return s, digest, nil
}

func decodeSettingsYAML(path string, b []byte, out *settingsOverlay) error {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(root.Content) == 0 || root.Content[0].Tag == "!!null" {
		return nil
	}
	if schemaErrs := validateSettingsYAML(&root); len(schemaErrs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, formatSchemaErrors(path, schemaErrs))
	}
	j, err := json.Marshal(yamlNodeToValue(root.Content[0]))
	if err != nil {
		return fmt.Errorf("normalize %s: %w", path, err)
	}
	if err := json.Unmarshal(j, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidSettings, path, err)
	}
	return nil
}

func decodeSettingsTOML(path string, b []byte, out *settingsOverlay) error {
	dec := toml.NewDecoder(bytes.NewReader(b)).DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: unknown fields in %s:\n%s", ErrInvalidSettings, path, strict.String())
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return fmt.Errorf("%w: parse %s at line %d column %d: %v", ErrInvalidSettings, path, row, col, decErr)
		}
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidSettings, path, err)
	}
	return nil
}

func validateSettings(s Settings) []string {
	var errs []string
	if s.NumBins < 1 {
		errs = append(errs, fmt.Sprintf("num_bins must be >= 1, got %d", s.NumBins))
	}
	if _, err := style.ParseMode(s.DefaultStyle); err != nil {
		errs = append(errs, fmt.Sprintf("default_style %q must be font_size or font_color", s.DefaultStyle))
	}
	switch table.Method(s.Binning.Method) {
	case table.MethodQuantile, table.MethodLinear:
	default:
		errs = append(errs, fmt.Sprintf("binning.method %q must be quantile or linear", s.Binning.Method))
	}
	switch table.Scope(s.Binning.Scope) {
	case table.ScopePhrase, table.ScopePooled:
	default:
		errs = append(errs, fmt.Sprintf("binning.scope %q must be phrase or pooled", s.Binning.Scope))
	}
	if len(s.Style.FontSizes) != s.NumBins {
		errs = append(errs, fmt.Sprintf("style.font_sizes has %d entries, num_bins is %d", len(s.Style.FontSizes), s.NumBins))
	}
	for i, v := range s.Style.FontSizes {
		if v <= 0 {
			errs = append(errs, fmt.Sprintf("style.font_sizes[%d] must be > 0, got %d", i, v))
		}
	}
	if len(s.Style.ColorPositions) != s.NumBins {
		errs = append(errs, fmt.Sprintf("style.color_positions has %d entries, num_bins is %d", len(s.Style.ColorPositions), s.NumBins))
	}
	for i, v := range s.Style.ColorPositions {
		if math.IsNaN(v) || v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("style.color_positions[%d] must be within [0, 1], got %g", i, v))
		}
	}
	if s.Style.DarkenBelow < 0 || s.Style.DarkenBelow > s.NumBins {
		errs = append(errs, fmt.Sprintf("style.darken_below must be within [0, %d], got %d", s.NumBins, s.Style.DarkenBelow))
	}
	if _, err := colormap.Named(s.Style.Colormap); err != nil {
		errs = append(errs, fmt.Sprintf("style.colormap %q must be one of %s", s.Style.Colormap, strings.Join(colormap.Names(), ", ")))
	}
	if strings.TrimSpace(s.Render.DarkBackground) == "" {
		errs = append(errs, "render.dark_background must not be empty")
	}
	if s.Render.ScorePrecision < 0 || s.Render.ScorePrecision > maxScorePrecision {
		errs = append(errs, fmt.Sprintf("render.score_precision must be within [0, %d], got %d", maxScorePrecision, s.Render.ScorePrecision))
	}
	if s.Render.CellWidth < 0 {
		errs = append(errs, fmt.Sprintf("render.cell_width must be >= 0, got %d", s.Render.CellWidth))
	}
	return errs
}

// resolveSettings layers file, environment and flag values, then validates
// the result once.
func resolveSettings(cfg Config, lookup envLookupFunc) (Settings, *InputDigest, error) {
	s := DefaultSettings()
	var digest *InputDigest
	if strings.TrimSpace(cfg.SettingsPath) != "" {
		loaded, d, err := loadSettingsFile(cfg.SettingsPath)
		digest = &d
		if err != nil {
			return Settings{}, digest, err
		}
		s = loaded
	}
	errs := applyEnvOverrides(&s, lookup)
	if strings.TrimSpace(cfg.Style) != "" {
		s.DefaultStyle = cfg.Style
	}
	if mode, err := style.ParseMode(s.DefaultStyle); err == nil {
		s.DefaultStyle = string(mode)
	}
	errs = append(errs, validateSettings(s)...)
	if len(errs) > 0 {
		return Settings{}, digest, fmt.Errorf("%w:\n- %s", ErrInvalidSettings, strings.Join(errs, "\n- "))
	}
	return s, digest, nil
}

func (s Settings) lookup() style.Lookup {
	return style.Lookup{
		FontSizes:      append([]int(nil), s.Style.FontSizes...),
		ColorPositions: append([]float64(nil), s.Style.ColorPositions...),
		DarkenBelow:    s.Style.DarkenBelow,
	}
}

func (s Settings) accumulatorOptions() table.Options {
	return table.Options{
		NumBins: s.NumBins,
		Method:  table.Method(s.Binning.Method),
		Scope:   table.Scope(s.Binning.Scope),
	}
}

func (s Settings) htmlOptions() render.HTMLOptions {
	return render.HTMLOptions{
		Title:          s.Render.Title,
		DarkBackground: s.Render.DarkBackground,
		Precision:      s.Render.ScorePrecision,
	}
}

func (s Settings) TerminalOptions() render.TerminalOptions {
	opts := render.DefaultTerminalOptions()
	opts.Title = s.Render.Title
	opts.Precision = s.Render.ScorePrecision
	if s.Render.CellWidth > 0 {
		opts.CellWidth = s.Render.CellWidth
	}
	return opts
}
