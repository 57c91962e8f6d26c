package dataset

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"amd-service-go/internal/aggregator"
	"amd-service-go/internal/types"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var resultsHeader = []any{
	"call_id", "audio_url", "strategy", "result", "confidence", "reasoning",
	"detection_time_ms", "model_used", "action", "error",
}

// WriteReport writes per-call results and the batch summary to an xlsx file.
func WriteReport(path string, results []types.CallResult, summary aggregator.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &resultsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		row := []any{
			r.CallID, r.AudioURL, r.Strategy, r.Result, r.Confidence, r.Reasoning,
			r.DetectionTime, r.ModelUsed, r.Action, r.Error,
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(resultsSheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	rows := [][]any{
		{"metric", "value"},
		{"total_calls", summary.TotalCalls},
		{"errors", summary.Errors},
		{"machine_rate", summary.MachineRate},
		{"avg_detection_ms", summary.AvgDetectionMs},
	}
	for _, res := range sortedKeys(summary.ByResult) {
		rows = append(rows, []any{"result_" + res, summary.ByResult[res]})
	}
	for _, res := range sortedKeys(summary.AvgConfidence) {
		rows = append(rows, []any{"avg_confidence_" + res, summary.AvgConfidence[res]})
	}
	for _, kind := range sortedKeys(summary.ErrorsByKind) {
		rows = append(rows, []any{"errors_" + kind, summary.ErrorsByKind[kind]})
	}
	for _, s := range sortedKeys(summary.SuccessRate) {
		rows = append(rows, []any{"success_rate_" + s, summary.SuccessRate[s]})
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cellRef, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
