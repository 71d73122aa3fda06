package models

import "math"

// Progress is a snapshot of an upload measured in transfer units.
type Progress struct {
	Transferred int
	Total       int
}

// Percent is Transferred/Total rounded to the nearest integer percentage.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(p.Transferred) * 100 / float64(p.Total)))
}

func (p Progress) Done() bool {
	return p.Total > 0 && p.Transferred >= p.Total
}
