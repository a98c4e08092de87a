// Package acpi reads battery fields from the procfs ACPI battery
// interface and derives a charging state from them.
package acpi

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Default battery data files.
const (
	DefaultInfoPath  = "/proc/acpi/battery/BAT1/info"
	DefaultStatePath = "/proc/acpi/battery/BAT1/state"
)

// ErrFieldNotFound is returned when the requested field is missing from the
// data file or its value cannot be parsed.
var ErrFieldNotFound = pkgerrors.New("field not found")

// Reader extracts individual fields from the ACPI info and state files.
// The info file holds static data (design capacities), the state file holds
// the current battery snapshot. A Reader keeps no state of its own; every
// call re-reads the file.
type Reader struct {
	infoPath  string
	statePath string
}

func NewReader() *Reader {
	return NewReaderAt(DefaultInfoPath, DefaultStatePath)
}

func NewReaderAt(infoPath, statePath string) *Reader {
	return &Reader{
		infoPath:  infoPath,
		statePath: statePath,
	}
}

// DesignCapacityLow returns the manufacturer-specified remaining capacity
// below which the battery is considered critically low.
func (r *Reader) DesignCapacityLow() (int, error) {
	return r.intField(r.infoPath, "design capacity low")
}

// RemainingCapacity returns the current remaining capacity.
func (r *Reader) RemainingCapacity() (int, error) {
	return r.intField(r.statePath, "remaining capacity")
}

// PresentRate returns the current charge or discharge rate.
func (r *Reader) PresentRate() (int, error) {
	return r.intField(r.statePath, "present rate")
}

// Present reports whether a battery is installed. Any read failure counts
// as not present.
func (r *Reader) Present() bool {
	v, err := r.stringField(r.statePath, "present")
	if err != nil {
		return false
	}
	return v == "yes"
}

// StateToken returns the raw charging-state token ("charging",
// "discharging", "charged", ...).
func (r *Reader) StateToken() (string, error) {
	return r.stringField(r.statePath, "charging state")
}

// intField scans path for a "key: value" line and parses the value as an
// integer. Units after the number ("mWh", "mW") are ignored.
func (r *Reader) intField(path, key string) (int, error) {
	v, err := r.stringField(path, key)
	if err != nil {
		return -1, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1, pkgerrors.Wrapf(ErrFieldNotFound, "field %q has non-numeric value %q", key, v)
	}
	return n, nil
}

// stringField scans path for a line starting with "key:" and returns the
// first token of its value.
func (r *Reader) stringField(path, key string) (string, error) {
	fp, err := os.Open(path)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to open %s", path)
	}
	defer fp.Close()

	prefix := key + ":"
	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, prefix))
		if len(fields) == 0 {
			return "", pkgerrors.Wrapf(ErrFieldNotFound, "field %q has no value in %s", key, path)
		}
		return fields[0], nil
	}
	if err := scanner.Err(); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to read %s", path)
	}

	return "", pkgerrors.Wrapf(ErrFieldNotFound, "field %q not in %s", key, path)
}
