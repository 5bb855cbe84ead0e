package stats

import (
	"math"
	"strconv"
)

// scoreDivisor is the upstream scaling constant: raw scores arrive
// pre-scaled by this factor. Its value is fixed by the source system.
const scoreDivisor = 100

// assistWeight is the fraction of an assist counted towards KDA.
const assistWeight = 2

// Total normalizes a pre-scaled upstream score to the canonical
// integer score unit.
func Total(raw int64) int64 {
	return int64(math.Round(float64(raw) / scoreDivisor))
}

// KD returns the kill/death ratio rounded to two decimal places.
// Zero deaths yields the kill count rather than a divide-by-zero.
func KD(kills, deaths int) float64 {
	if deaths == 0 {
		return round2(float64(kills))
	}
	return round2(float64(kills) / float64(deaths))
}

// KDA returns the kills-deaths-assists ratio with assists weighted at
// half a kill, using the same zero-deaths guard as KD.
func KDA(kills, deaths, assists int) float64 {
	weighted := float64(kills) + float64(assists)/assistWeight
	if deaths == 0 {
		return round2(weighted)
	}
	return round2(weighted / float64(deaths))
}

// PPG returns points per game, rounded to the nearest point. Callers
// only invoke it when games > 0.
func PPG(games int, score int64) int64 {
	return int64(math.Round(float64(score) / float64(games)))
}

// Ranking formats a rank for display: an English ordinal for positive
// ranks, a blank placeholder for upstream "unranked" sentinels.
func Ranking(rank int) string {
	if rank <= 0 {
		return "-"
	}
	return strconv.Itoa(rank) + ordinalSuffix(rank)
}

func ordinalSuffix(rank int) string {
	switch rank % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch rank % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
