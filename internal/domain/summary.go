package domain

// Summary holds statistics derived from a result collection.
type Summary struct {
	Total        int            `json:"total"`
	StatusCounts map[Status]int `json:"status_counts"`
	// MeanResponseTimeMS is nil when no result carries a response time.
	MeanResponseTimeMS *float64 `json:"mean_response_time_ms"`
}

// Summarize computes a Summary from results alone; nothing is cached.
func Summarize(results []ProbeResult) Summary {
	s := Summary{
		Total:        len(results),
		StatusCounts: make(map[Status]int),
	}
	var total float64
	var timed int
	for _, r := range results {
		s.StatusCounts[r.Status]++
		if r.ResponseTimeMillis != nil {
			total += *r.ResponseTimeMillis
			timed++
		}
	}
	if timed > 0 {
		mean := total / float64(timed)
		s.MeanResponseTimeMS = &mean
	}
	return s
}
