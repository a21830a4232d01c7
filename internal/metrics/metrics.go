// Package metrics computes live typing speed and accuracy.
package metrics

import "math"

// CharsPerWord is the standard word length used for WPM.
const CharsPerWord = 5

// Accuracy returns the percentage of correct characters, rounded to an
// integer in [0,100]. Nothing typed yet scores 100.
func Accuracy(correctChars, totalChars int) int {
	if totalChars <= 0 {
		return 100
	}
	acc := int(math.Round(100 * float64(correctChars) / float64(totalChars)))
	return clamp(acc, 0, 100)
}

// WPM returns words per minute for the given correct characters and
// elapsed seconds. Callers should only ask once at least one second has
// elapsed; a non-positive duration yields 0.
func WPM(correctChars, elapsedSeconds int) int {
	if elapsedSeconds <= 0 || correctChars <= 0 {
		return 0
	}
	words := float64(correctChars) / CharsPerWord
	minutes := float64(elapsedSeconds) / 60
	return int(math.Round(words / minutes))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
