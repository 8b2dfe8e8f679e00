package prediction

import (
	"fmt"
	"strings"

	"github.com/trezcool/smartgrades/core/analysis"
)

func contributingFactors(a *analyzed) []string {
	var factors []string
	st, tgt := a.student, a.target

	switch {
	case st.TrendSlope > 2:
		factors = append(factors, fmt.Sprintf("Improving trend (+%.1f points per assessment)", st.TrendSlope))
	case st.TrendSlope < -2:
		factors = append(factors, fmt.Sprintf("Declining trend (%.1f points per assessment)", st.TrendSlope))
	}

	switch {
	case st.ConsistencyScore > 0.8:
		factors = append(factors, "Highly consistent performance")
	case st.ConsistencyScore < 0.4:
		factors = append(factors, "Inconsistent performance history")
	}

	difficulty := strings.Replace(string(tgt.Difficulty), "_", " ", 1)
	if tgt.HasClassData {
		factors = append(factors, fmt.Sprintf("Assessment appears %s (class average %.1f)", difficulty, tgt.ClassAverage))
	} else {
		factors = append(factors, fmt.Sprintf("Assessment difficulty estimated as %s from its weight", difficulty))
	}

	switch {
	case st.WeightedAverage >= 90:
		factors = append(factors, "Strong overall performance")
	case st.WeightedAverage < 60:
		factors = append(factors, "Below-passing overall performance")
	}

	if ts, ok := st.TypeStats[tgt.Type]; ok && tgt.Type != analysis.TypeOther {
		factors = append(factors, fmt.Sprintf("Past %s average: %.1f over %d", tgt.Type, ts.Average, ts.Count))
	}

	if a.rank != nil {
		factors = append(factors, fmt.Sprintf("Projected class position %.0f of %d", a.rank.ProjectedRank, SyntheticClassSize))
	}
	return factors
}
