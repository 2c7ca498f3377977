// Package frag estimates how much of an address space is wasted by
// fragmentation.
//
// Two metrics are provided. Legacy reproduces the simulator's historical
// figure, which is order-dependent: it effectively reports the length of the
// last free run encountered in a left-to-right scan. Unusable is the
// corrected metric: free cells outside the largest free run, as a percentage
// of the whole space.
package frag

import "github.com/joshuapare/memsim/memory"

// Report summarises the free-space layout of a space.
type Report struct {
	TotalCells     int     `json:"total_cells"`
	FreeCells      int     `json:"free_cells"`
	FreeRuns       int     `json:"free_runs"`
	LargestFreeRun int     `json:"largest_free_run"`
	Legacy         float64 `json:"legacy_percent"`
	Unusable       float64 `json:"unusable_percent"`
}

// Legacy scans s once, left to right. Starting a free run resets the
// accumulator to 1 and every further free cell in that run increments it;
// owned cells end the run but leave the accumulator alone.
func Legacy(s *memory.Space) float64 {
	total := s.Len()
	if total == 0 {
		return 0
	}
	run, acc := 0, 0
	for i := range total {
		if !s.IsFree(i) {
			run = 0
			continue
		}
		run++
		if run > 1 {
			acc++
		} else {
			acc = 1
		}
	}
	return float64(acc) / float64(total) * 100
}

// Unusable returns (free cells - largest free run) / total cells * 100.
func Unusable(s *memory.Space) float64 {
	total := s.Len()
	if total == 0 {
		return 0
	}
	largest := 0
	for _, r := range s.FreeRuns() {
		largest = max(largest, r.Len())
	}
	return float64(s.FreeCells()-largest) / float64(total) * 100
}

// Analyze computes every metric in one pass over the free runs.
func Analyze(s *memory.Space) Report {
	runs := s.FreeRuns()
	rep := Report{
		TotalCells: s.Len(),
		FreeCells:  s.FreeCells(),
		FreeRuns:   len(runs),
		Legacy:     Legacy(s),
	}
	for _, r := range runs {
		rep.LargestFreeRun = max(rep.LargestFreeRun, r.Len())
	}
	if rep.TotalCells > 0 {
		rep.Unusable = float64(rep.FreeCells-rep.LargestFreeRun) / float64(rep.TotalCells) * 100
	}
	return rep
}
