package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/terrain/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir         string
	erosionFile *os.File
	stageFile   *os.File
	summaryFile *os.File

	// Track if headers have been written
	erosionHeaderWritten bool
	summaryHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"erosion.csv", &om.erosionFile},
		{"stages.csv", &om.stageFile},
		{"summary.csv", &om.summaryFile},
	}
	for _, f := range files {
		h, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = h
	}
	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteErosion appends a hydraulic iteration record to erosion.csv.
func (om *OutputManager) WriteErosion(rec ErosionRecord) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.erosionFile, []ErosionRecord{rec}, &om.erosionHeaderWritten); err != nil {
		return fmt.Errorf("writing erosion: %w", err)
	}
	return nil
}

// WriteSummary appends a stage summary to summary.csv.
func (om *OutputManager) WriteSummary(s Summary) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.summaryFile, []Summary{s}, &om.summaryHeaderWritten); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WriteStages writes the per-stage timing table to stages.csv.
func (om *OutputManager) WriteStages(stats PerfStats) error {
	if om == nil {
		return nil
	}
	rows := stats.ToCSV()
	if len(rows) == 0 {
		return nil
	}
	if err := gocsv.Marshal(rows, om.stageFile); err != nil {
		return fmt.Errorf("writing stages: %w", err)
	}
	return nil
}

// appendCSV writes records, including the header only on the first call.
func appendCSV[T any](f *os.File, records []T, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.erosionFile, om.stageFile, om.summaryFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
