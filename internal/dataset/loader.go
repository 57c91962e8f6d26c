package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"amd-service-go/internal/types"
)

// Load reads call records from the first sheet of an xlsx workbook. Columns
// are found by header heuristics; rows without a usable recording location
// are skipped.
func Load(path string) ([]types.CallRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	audioIdx := -1
	callIDIdx := -1
	phoneIdx := -1
	strategyIdx := -1
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "audio") || strings.Contains(l, "recording") || strings.Contains(l, "url") || strings.Contains(l, "path"):
			if audioIdx == -1 {
				audioIdx = i
			}
		case strings.Contains(l, "phone") || strings.Contains(l, "number") || l == "to":
			if phoneIdx == -1 {
				phoneIdx = i
			}
		case strings.Contains(l, "strategy") || strings.Contains(l, "method"):
			if strategyIdx == -1 {
				strategyIdx = i
			}
		case strings.Contains(l, "call id") || strings.Contains(l, "call_id") || strings.Contains(l, "callid") || strings.Contains(l, "sid") || l == "id":
			if callIDIdx == -1 {
				callIDIdx = i
			}
		}
	}
	// fallback: two column sheets are call id, recording
	if audioIdx == -1 && len(header) == 2 {
		callIDIdx, audioIdx = 0, 1
	}
	if audioIdx == -1 {
		return nil, fmt.Errorf("no recording column in header %q", header)
	}

	cell := func(r []string, idx int) string {
		if idx >= 0 && idx < len(r) {
			return strings.TrimSpace(r[idx])
		}
		return ""
	}

	var out []types.CallRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		record := types.CallRecord{
			CallID:      cell(r, callIDIdx),
			AudioURL:    cell(r, audioIdx),
			PhoneNumber: cell(r, phoneIdx),
			Strategy:    cell(r, strategyIdx),
		}
		if !usableLocation(record.AudioURL) {
			continue
		}
		if record.CallID == "" {
			record.CallID = fmt.Sprintf("row-%d", i+1)
		}
		out = append(out, record)
	}
	return out, nil
}

func usableLocation(s string) bool {
	l := strings.ToLower(s)
	if strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") {
		return true
	}
	switch filepath.Ext(l) {
	case ".wav", ".mp3":
		return true
	}
	return false
}
