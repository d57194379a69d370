package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/pointfield/config"
)

// Output file names.
const (
	WindowsFile  = "telemetry.csv"
	TimingFile   = "timing.csv"
	InstallsFile = "installs.csv"
	ConfigFile   = "config.yaml"
)

// csvLog appends gocsv records to one file, writing the header once.
type csvLog struct {
	name   string
	f      *os.File
	header bool
}

func createLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, f: f}, nil
}

// append writes records, a slice of csv-tagged structs.
func (l *csvLog) append(records any) error {
	var err error
	if l.header {
		err = gocsv.MarshalWithoutHeaders(records, l.f)
	} else {
		err = gocsv.Marshal(records, l.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	l.header = true
	return nil
}

// OutputManager writes a run's CSV logs and config snapshot into one
// directory: per-window stats, per-window frame timing and one row per
// installed field. A nil manager discards everything.
type OutputManager struct {
	dir      string
	windows  *csvLog
	timing   *csvLog
	installs *csvLog
}

// NewOutputManager creates dir and its log files. An empty dir disables
// output and returns a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, f := range []struct {
		name string
		dst  **csvLog
	}{
		{WindowsFile, &om.windows},
		{TimingFile, &om.timing},
		{InstallsFile, &om.installs},
	} {
		l, err := createLog(dir, f.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*f.dst = l
	}
	return om, nil
}

// WriteConfig saves cfg as YAML next to the logs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteWindow appends a stats window.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.windows.append([]WindowStats{stats})
}

// WriteTiming appends the frame timing of a window.
func (om *OutputManager) WriteTiming(ft FrameTiming) error {
	if om == nil {
		return nil
	}
	return om.timing.append([]TimingRow{ft.Row()})
}

// WriteInstall appends an installed field.
func (om *OutputManager) WriteInstall(r InstallRecord) error {
	if om == nil {
		return nil
	}
	return om.installs.append([]InstallRecord{r})
}

// Dir returns the output directory, or "" when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every log file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, l := range []*csvLog{om.windows, om.timing, om.installs} {
		if l != nil {
			errs = append(errs, l.f.Close())
		}
	}
	return errors.Join(errs...)
}
