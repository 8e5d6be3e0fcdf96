package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Well-known artifact names inside the clean directory
const (
	CleanCSVName      = "education_clean.csv"
	InsightsJSONName  = "insights.json"
	CleanWorkbookName = "education_clean.xlsx"
	YLSChartName      = "yls_top.png"
)

// Paths contains every resolved file system location used by the pipeline and server.
// This is the single source of truth for file paths.
type Paths struct {
	RootDir  string
	RawDir   string
	CleanDir string
	LogsDir  string

	// Pipeline inputs
	WDIFile     string
	CountryFile string

	// Pipeline outputs / server inputs
	CleanCSV      string
	InsightsJSON  string
	CleanWorkbook string
	YLSChart      string
}

// ResolvePaths resolves the configured layout into absolute paths
func (c *Config) ResolvePaths() (*Paths, error) {
	return NewPaths(c.Paths)
}

// NewPaths resolves a PathsConfig. Relative directories hang off RootDir and
// relative file names hang off RawDir.
func NewPaths(pc PathsConfig) (*Paths, error) {
	root := pc.RootDir
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory %q: %w", pc.RootDir, err)
	}

	rawDir := under(root, pc.RawDir)
	cleanDir := under(root, pc.CleanDir)
	logsDir := under(root, pc.LogsDir)

	return &Paths{
		RootDir:  root,
		RawDir:   rawDir,
		CleanDir: cleanDir,
		LogsDir:  logsDir,

		WDIFile:     under(rawDir, pc.WDIFile),
		CountryFile: under(rawDir, pc.CountryFile),

		CleanCSV:      filepath.Join(cleanDir, CleanCSVName),
		InsightsJSON:  filepath.Join(cleanDir, InsightsJSONName),
		CleanWorkbook: filepath.Join(cleanDir, CleanWorkbookName),
		YLSChart:      filepath.Join(cleanDir, YLSChartName),
	}, nil
}

// WithCleanDir returns a copy of p whose outputs live in dir
func (p *Paths) WithCleanDir(dir string) *Paths {
	cp := *p
	cp.CleanDir = under(p.RootDir, dir)
	cp.CleanCSV = filepath.Join(cp.CleanDir, CleanCSVName)
	cp.InsightsJSON = filepath.Join(cp.CleanDir, InsightsJSONName)
	cp.CleanWorkbook = filepath.Join(cp.CleanDir, CleanWorkbookName)
	cp.YLSChart = filepath.Join(cp.CleanDir, YLSChartName)
	return &cp
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.CleanDir}
	if p.LogsDir != "" {
		dirs = append(dirs, p.LogsDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs every resolved path at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("root_dir", p.RootDir),
		slog.String("raw_dir", p.RawDir),
		slog.String("clean_dir", p.CleanDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("wdi_file", p.WDIFile),
		slog.String("country_file", p.CountryFile),
		slog.String("clean_csv", p.CleanCSV),
		slog.String("insights_json", p.InsightsJSON))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func under(base, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
