package entity

import (
	"math"
	"sort"
)

// KeywordCandidate is one keyword produced by the enrichment pipeline,
// carrying the raw metrics from the data provider and the derived scores.
type KeywordCandidate struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     int     `json:"search_volume"`
	CompetitionIndex float64 `json:"competition_index"`
	CPC              float64 `json:"cpc"`
	VolumeScore      float64 `json:"volume_score"`
	CompetitionScore float64 `json:"competition_score"`
	TotalScore       float64 `json:"total_score"`

	// Precise reports whether the metrics came from the high-accuracy
	// provider pass rather than the bulk pass.
	Precise bool `json:"precise"`
}

// VolumeScore maps a monthly search volume onto a 0-100 scale. The mapping
// is piecewise linear with knees at 10, 100 and 1000 searches so that the
// long tail of low-volume keywords still differentiates.
func VolumeScore(volume int) float64 {
	v := float64(volume)
	switch {
	case volume <= 0:
		return 0
	case volume < 10:
		return v / 10 * 40
	case volume < 100:
		return 40 + (v-10)/90*30
	case volume < 1000:
		return 70 + (v-100)/900*30
	default:
		return 100
	}
}

// CompetitionScore inverts the provider's 0-100 competition index so that
// low competition scores high. Indexes above 100 clamp to zero.
func CompetitionScore(index float64) float64 {
	s := 100 - index
	if s < 0 {
		return 0
	}
	return s
}

// Score fills in the derived score fields from the raw metrics.
// TotalScore weights volume at 0.6 and competition at 0.4, rounded to two
// decimal places.
func (c *KeywordCandidate) Score() {
	c.VolumeScore = VolumeScore(c.SearchVolume)
	c.CompetitionScore = CompetitionScore(c.CompetitionIndex)
	c.TotalScore = round2(0.6*c.VolumeScore + 0.4*c.CompetitionScore)
}

// SortCandidates orders candidates by descending total score, breaking ties
// by keyword for a stable order across runs.
func SortCandidates(cs []KeywordCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].TotalScore != cs[j].TotalScore {
			return cs[i].TotalScore > cs[j].TotalScore
		}
		return cs[i].Keyword < cs[j].Keyword
	})
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
