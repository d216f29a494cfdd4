package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/encsim/internal/experiment"
	"github.com/san-kum/encsim/internal/sim"
)

type ExportData struct {
	Name     string             `json:"name"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Mode     string             `json:"mode"`
	Steps    int                `json:"steps"`
	Stats    sim.Stats          `json:"stats"`
	Aircraft [2][]sim.Sample    `json:"aircraft"`
	Metrics  map[string]float64 `json:"metrics"`
}

func exportData(enc experiment.Encounter, result *sim.Result) ExportData {
	cfg := enc.Config()
	return ExportData{
		Name:     enc.Name,
		Dt:       cfg.Constants.Dt,
		Duration: cfg.Duration,
		Mode:     cfg.Encounter.Mode.String(),
		Steps:    result.Len(),
		Stats:    result.Stats,
		Aircraft: result.Aircraft,
		Metrics:  result.Metrics,
	}
}

func ExportJSON(w io.Writer, enc experiment.Encounter, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(enc, result))
}

// ExportCSV writes both tracks side by side, one row per tick.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, 2*len(sim.Channels))
	for k := range result.Aircraft {
		for _, ch := range sim.Channels {
			header = append(header, fmt.Sprintf("ac%d_%s", k+1, ch))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for i := 0; i < result.Len(); i++ {
		row = row[:0]
		for k := range result.Aircraft {
			for _, v := range result.Aircraft[k][i].Values() {
				row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const (
	summarySheet = "Summary"
	metricsSheet = "Metrics"
)

// ExportXLSX writes a workbook with a summary sheet, a metrics sheet and
// one track sheet per aircraft.
func ExportXLSX(path string, enc experiment.Encounter, result *sim.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	trackSheets := [2]string{"Aircraft1", "Aircraft2"}
	for _, name := range append([]string{summarySheet, metricsSheet}, trackSheets[:]...) {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	data := exportData(enc, result)
	summary := [][]interface{}{
		{"Name", data.Name},
		{"Mode", data.Mode},
		{"Dt (s)", data.Dt},
		{"Duration (s)", data.Duration},
		{"Samples", data.Steps},
		{"Stop time (s)", data.Stats.StopTime},
		{"NMAC", data.Stats.NMAC},
		{"Outside cylinder", data.Stats.OutsideCylinder},
		{"Early stop", data.Stats.EarlyStop},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	header := []string{"Metric", "Value"}
	if err := f.SetSheetRow(metricsSheet, "A1", &header); err != nil {
		return err
	}
	for i, name := range sortedKeys(result.Metrics) {
		row := []interface{}{name, result.Metrics[name]}
		if err := f.SetSheetRow(metricsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	for k, sheet := range trackSheets {
		if err := f.SetSheetRow(sheet, "A1", &sim.Channels); err != nil {
			return err
		}
		for i, s := range result.Aircraft[k] {
			vals := s.Values()
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &vals); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}
