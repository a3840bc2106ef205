package pillars

import "math"

const (
	scaleMin = 1.0
	scaleMax = 5.0
)

// ComputeScores turns raw 1-5 answers into 0-100 scores per question plus a
// weighted "overall" score. Answers outside the scale are clamped. Missing
// answers contribute zero and their weight is dropped from the overall
// denominator so a partial form still scores deterministically.
func ComputeScores(kind Key, answers map[string]float64) map[string]float64 {
	scores := make(map[string]float64)
	var weighted, weightSum float64
	for _, q := range Questions(kind) {
		raw, ok := answers[q.ID]
		if !ok {
			continue
		}
		s := normalize(raw, q.Inverted)
		scores[q.ID] = s
		weighted += s * q.Weight
		weightSum += q.Weight
	}
	if weightSum > 0 {
		scores["overall"] = math.Round(weighted/weightSum*10) / 10
	} else {
		scores["overall"] = 0
	}
	return scores
}

func normalize(raw float64, inverted bool) float64 {
	v := raw
	if v < scaleMin {
		v = scaleMin
	}
	if v > scaleMax {
		v = scaleMax
	}
	s := (v - scaleMin) / (scaleMax - scaleMin) * 100
	if inverted {
		s = 100 - s
	}
	return math.Round(s*10) / 10
}
