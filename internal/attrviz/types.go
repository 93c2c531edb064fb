package attrviz

import (
	"github.com/solardome/attrviz/internal/report"
	"github.com/solardome/attrviz/internal/table"
)

const ReportSchemaVersion = "1"

type Config struct {
	InputPaths    []string
	SettingsPath  string
	Style         string
	OutHTMLPath   string
	OutJSONPath   string
	ChecksumsPath string
	RunLogPath    string
	WriteHTML     bool
	// Lookup resolves environment overrides; nil means os.LookupEnv.
	Lookup envLookupFunc
}

type Settings struct {
	NumBins      int             `json:"num_bins"`
	DefaultStyle string          `json:"default_style"`
	Binning      BinningSettings `json:"binning"`
	Style        StyleSettings   `json:"style"`
	Render       RenderSettings  `json:"render"`
	Ingest       IngestSettings  `json:"ingest"`
}

type BinningSettings struct {
	Method string `json:"method"`
	Scope  string `json:"scope"`
}

type StyleSettings struct {
	FontSizes      []int     `json:"font_sizes"`
	ColorPositions []float64 `json:"color_positions"`
	DarkenBelow    int       `json:"darken_below"`
	Colormap       string    `json:"colormap"`
}

type RenderSettings struct {
	Title          string `json:"title"`
	DarkBackground string `json:"dark_background"`
	ScorePrecision int    `json:"score_precision"`
	CellWidth      int    `json:"cell_width"`
}

type IngestSettings struct {
	NormalizeNFC bool `json:"normalize_nfc"`
}

type InputDigest struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	SHA256  string `json:"sha256"`
	ReadOK  bool   `json:"read_ok"`
	Phrases int    `json:"phrases"`
}

type Result struct {
	RunID     string
	Settings  Settings
	Inputs    []InputDigest
	Rows      []table.Row
	Width     int
	Lookup    map[string]int
	Artifacts []report.Checksum
}

type Report struct {
	SchemaVersion string         `json:"schema_version"`
	RunID         string         `json:"run_id"`
	Inputs        []InputDigest  `json:"inputs"`
	Settings      Settings       `json:"settings"`
	Width         int            `json:"width"`
	Phrases       []table.Row    `json:"phrases"`
	Lookup        map[string]int `json:"lookup"`
}
