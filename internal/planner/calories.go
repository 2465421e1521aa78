package planner

import "math"

// estimateCalories returns MET * kg * hours rounded to 0.1 kcal.
func estimateCalories(met, weightKg float64, minutes int) float64 {
	return roundTenth(met * weightKg * float64(minutes) / 60) //nolint:mnd // minutes in an hour.
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10 //nolint:mnd // one decimal.
}
