package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/smartgrades/core/analysis"
)

func TestBandRank(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{score: 100, want: 1},
		{score: 95, want: 2},
		{score: 90, want: 3},
		{score: 85, want: 6},
		{score: 80, want: 8},
		{score: 70, want: 17},
		{score: 65, want: 20},
		{score: 60, want: 22},
		{score: 30, want: 24},
		{score: 0, want: 25},
		{score: 150, want: 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, bandRank(tt.score), 1e-9, "bandRank(%v)", tt.score)
	}
}

func TestPercentileScore(t *testing.T) {
	assert.Equal(t, 100.0, percentileScore(0))
	assert.InDelta(t, 90.0, percentileScore(0.10), 1e-9)
	assert.InDelta(t, 80.0, percentileScore(0.25), 1e-9)
	assert.InDelta(t, 75.0, percentileScore(0.375), 1e-9)
	assert.InDelta(t, 70.0, percentileScore(0.50), 1e-9)
	assert.InDelta(t, 60.0, percentileScore(0.70), 1e-9)
	assert.InDelta(t, 40.0, percentileScore(1), 1e-9)
}

func TestRankToScore(t *testing.T) {
	peers := []float64{95, 90, 85, 80}
	assert.Equal(t, 95.0, rankToScore(1, peers))
	assert.Equal(t, 90.0, rankToScore(2.4, peers))
	assert.Equal(t, 80.0, rankToScore(4, peers))
	assert.Equal(t, 70.0, rankToScore(6, peers))
	assert.Equal(t, 0.0, rankToScore(25, peers))
	// linear extrapolation past a short peer list bottoms out quickly
	assert.Equal(t, 0.0, rankToScore(13, []float64{90, 80, 70}))

	// no spread: percentile curve
	assert.Equal(t, 100.0, rankToScore(1, []float64{80, 80, 80}))
	assert.InDelta(t, 70.0, rankToScore(13, []float64{80}), 1e-9)
}

func TestSyntheticRank(t *testing.T) {
	rp := syntheticRank([]float64{80, 80, 80}, analysis.AssessmentProfile{Difficulty: analysis.Moderate})
	assert.InDelta(t, 8, rp.AverageRank, 1e-9)
	assert.InDelta(t, 8, rp.MedianRank, 1e-9)
	assert.InDelta(t, 0, rp.RankTrend, 1e-9)
	assert.InDelta(t, 8, rp.ProjectedRank, 1e-9)

	// improving ranks pull the projection up, a very hard assessment pushes it down
	rp = syntheticRank([]float64{70, 80, 90}, analysis.AssessmentProfile{Difficulty: analysis.VeryHard})
	assert.InDelta(t, 8, rp.MedianRank, 1e-9)
	assert.InDelta(t, -7, rp.RankTrend, 1e-9)
	assert.InDelta(t, 1, rp.ProjectedRank, 1e-9)

	rp = syntheticRank([]float64{0, 0}, analysis.AssessmentProfile{Difficulty: analysis.VeryHard})
	assert.InDelta(t, 25, rp.ProjectedRank, 1e-9)
	assert.InDelta(t, 40, rp.Score, 1e-9)
}
