package aggregator

import "amd-service-go/internal/types"

const unspecifiedStrategy = "default"

// Summary describes a batch of analysed calls.
type Summary struct {
	TotalCalls     int                `json:"total_calls"`
	ByResult       map[string]int     `json:"by_result"`
	ByStrategy     map[string]int     `json:"by_strategy"`
	Errors         int                `json:"errors"`
	ErrorsByKind   map[string]int     `json:"errors_by_kind"`
	AvgConfidence  map[string]float64 `json:"avg_confidence"`
	AvgDetectionMs float64            `json:"avg_detection_ms"`
	// MachineRate is machine results over successfully analysed calls.
	MachineRate float64 `json:"machine_rate"`
	// SuccessRate per strategy is the share of calls that reached a definite
	// human or machine result.
	SuccessRate map[string]float64 `json:"success_rate"`
}

func Aggregate(results []types.CallResult) Summary {
	s := Summary{
		TotalCalls:    len(results),
		ByResult:      map[string]int{},
		ByStrategy:    map[string]int{},
		ErrorsByKind:  map[string]int{},
		AvgConfidence: map[string]float64{},
		SuccessRate:   map[string]float64{},
	}

	confSum := map[string]float64{}
	definite := map[string]int{}
	var detectionSum float64
	analysed := 0
	for _, r := range results {
		strategy := r.Strategy
		if strategy == "" {
			strategy = unspecifiedStrategy
		}
		s.ByStrategy[strategy]++

		if r.Failed() {
			s.Errors++
			s.ErrorsByKind[r.ErrorKind]++
			continue
		}
		analysed++
		s.ByResult[r.Result]++
		confSum[r.Result] += r.Confidence
		detectionSum += float64(r.DetectionTime)
		if r.Result == "human" || r.Result == "machine" {
			definite[strategy]++
		}
	}

	for res, n := range s.ByResult {
		s.AvgConfidence[res] = confSum[res] / float64(n)
	}
	if analysed > 0 {
		s.AvgDetectionMs = detectionSum / float64(analysed)
		s.MachineRate = float64(s.ByResult["machine"]) / float64(analysed)
	}
	for strategy, n := range s.ByStrategy {
		s.SuccessRate[strategy] = float64(definite[strategy]) / float64(n)
	}
	return s
}
