package prediction

import (
	"math"

	"github.com/trezcool/smartgrades/core/analysis"
	"github.com/trezcool/smartgrades/core/grading"
)

// SyntheticClassSize is the class size ranks are simulated on.
// The ranks are not derived from real rankings.
const SyntheticClassSize = 25

// rankProjection is the outcome of the synthetic rank stage.
type rankProjection struct {
	AverageRank   float64
	MedianRank    float64
	RankTrend     float64
	ProjectedRank float64
	Score         float64
}

// bandRank places a score inside its rank band, interpolating linearly within the band:
// 90+ ranks 1-3, 80+ 4-8, 70+ 9-17, 60+ 18-22 and the rest 23-25.
func bandRank(score float64) float64 {
	score = grading.ClampPercent(score)
	switch {
	case score >= 90:
		return 1 + (100-score)/10*2
	case score >= 80:
		return 4 + (90-score)/10*4
	case score >= 70:
		return 9 + (80-score)/10*8
	case score >= 60:
		return 18 + (70-score)/10*4
	default:
		return 23 + (60-score)/60*2
	}
}

func syntheticRank(scores []float64, target analysis.AssessmentProfile) rankProjection {
	ranks := make([]float64, 0, len(scores))
	for _, s := range scores {
		ranks = append(ranks, bandRank(s))
	}

	var rp rankProjection
	rp.AverageRank = analysis.Mean(ranks)
	rp.MedianRank = analysis.Median(ranks)
	rp.RankTrend = analysis.Slope(ranks)

	// a falling rank is an improving student
	next := rp.MedianRank + 2*math.Min(rp.RankTrend, 0)
	switch target.Difficulty {
	case analysis.VeryHard:
		next += 2
	case analysis.Easy:
		next--
	}
	rp.ProjectedRank = grading.Clamp(next, 1, SyntheticClassSize)
	rp.Score = rankToScore(rp.ProjectedRank, target.PeerScores)
	return rp
}

// rankToScore reads the score at `rank` from the peer distribution (sorted best first) when
// it is spread enough, extrapolating by the mean gap past its end. Otherwise it uses a fixed
// percentile curve.
func rankToScore(rank float64, peers []float64) float64 {
	if len(peers) >= 2 && analysis.PopStdDev(peers) >= 1 {
		idx := int(math.Round(rank)) - 1
		if idx < 0 {
			idx = 0
		}
		last := len(peers) - 1
		if idx <= last {
			return peers[idx]
		}
		gap := (peers[0] - peers[last]) / float64(last)
		return grading.ClampPercent(peers[last] - float64(idx-last)*gap)
	}
	return percentileScore((rank - 1) / (SyntheticClassSize - 1))
}

// percentileScore maps a percentile (0 is top of the class) onto the score curve:
// top 10% 100-90, next 15% 90-80, next 25% 80-70, next 20% 70-60, bottom 30% 60-40.
func percentileScore(p float64) float64 {
	p = grading.Clamp(p, 0, 1)
	switch {
	case p <= 0.10:
		return 100 - p/0.10*10
	case p <= 0.25:
		return 90 - (p-0.10)/0.15*10
	case p <= 0.50:
		return 80 - (p-0.25)/0.25*10
	case p <= 0.70:
		return 70 - (p-0.50)/0.20*10
	default:
		return 60 - (p-0.70)/0.30*20
	}
}
