// Package timing imports and exports the phase durations of the network's
// lights, and defines the per-junction timing candidates that the optimizer
// searches over.
package timing

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/signal"
	"github.com/sarchlab/greenwave/sim"
)

var columns = []string{
	"road", "red_time", "green_time", "amber_time", "red_amber_time",
}

// A Table maps road names to phase durations. It mirrors one CSV file with
// columns road, red_time, green_time, amber_time, red_amber_time.
type Table map[string]signal.Timings

// Import reads a timing table from a CSV file. A missing file is not an
// error: Import returns a nil Table and the caller keeps its defaults.
func Import(path string) (Table, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("timing: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("timing: reading %s: %w", path, err)
	}

	if len(rows) == 0 {
		return Table{}, nil
	}

	if err := headerMustMatch(rows[0]); err != nil {
		return nil, fmt.Errorf("timing: reading %s: %w", path, err)
	}

	table := Table{}
	for i, row := range rows[1:] {
		name, timings, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf(
				"timing: reading %s, row %d: %w", path, i+2, err)
		}

		table[name] = timings
	}

	return table, nil
}

func headerMustMatch(header []string) error {
	if len(header) != len(columns) {
		return fmt.Errorf("header has %d columns, want %d",
			len(header), len(columns))
	}

	for i, col := range columns {
		if header[i] != col {
			return fmt.Errorf("header column %d is %q, want %q",
				i+1, header[i], col)
		}
	}

	return nil
}

func parseRow(row []string) (string, signal.Timings, error) {
	if len(row) != len(columns) {
		return "", signal.Timings{}, fmt.Errorf(
			"row has %d columns, want %d", len(row), len(columns))
	}

	if row[0] == "" {
		return "", signal.Timings{}, fmt.Errorf("road name is empty")
	}

	values := make([]float64, len(columns)-1)
	for i := range values {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return "", signal.Timings{}, fmt.Errorf(
				"column %s: %w", columns[i+1], err)
		}

		if v <= 0 {
			return "", signal.Timings{}, fmt.Errorf(
				"column %s: duration %f is not positive", columns[i+1], v)
		}

		values[i] = v
	}

	timings := signal.Timings{
		Red:      sim.VTimeInSec(values[0]),
		Green:    sim.VTimeInSec(values[1]),
		Amber:    sim.VTimeInSec(values[2]),
		RedAmber: sim.VTimeInSec(values[3]),
	}

	return row[0], timings, nil
}

// Apply reconfigures every road whose name appears in the table. Roads
// without a row keep their current timings.
func (t Table) Apply(net *roadnet.Network) {
	for _, road := range net.Roads() {
		timings, ok := t[road.Name()]
		if !ok {
			continue
		}

		road.Light().SetTimings(timings)
	}
}

// Export writes the current light configuration of every road, one row per
// road, ordered by road name. An existing file is overwritten.
func Export(path string, net *roadnet.Network) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("timing: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("timing: writing %s: %w", path, err)
	}

	roads := make([]*roadnet.Road, len(net.Roads()))
	copy(roads, net.Roads())
	sort.Slice(roads, func(i, j int) bool {
		return roads[i].Name() < roads[j].Name()
	})

	for _, road := range roads {
		timings := road.Light().Timings()
		row := []string{
			road.Name(),
			formatDuration(timings.Red),
			formatDuration(timings.Green),
			formatDuration(timings.Amber),
			formatDuration(timings.RedAmber),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("timing: writing %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("timing: writing %s: %w", path, err)
	}

	return nil
}

func formatDuration(d sim.VTimeInSec) string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}
