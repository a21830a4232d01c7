package metrics

import "testing"

func TestAccuracy(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 100},
		{45, 50, 90},
		{0, 10, 0},
		{10, 10, 100},
		{2, 3, 67},
		{1, 3, 33},
		{20, 10, 100},
		{-5, 10, 0},
	}
	for _, tc := range cases {
		if got := Accuracy(tc.correct, tc.total); got != tc.want {
			t.Fatalf("Accuracy(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestWPM(t *testing.T) {
	cases := []struct {
		correct, elapsed, want int
	}{
		{50, 60, 10},
		{25, 30, 10},
		{0, 60, 0},
		{50, 0, 0},
		{50, -1, 0},
		{7, 60, 1},
		{300, 60, 60},
	}
	for _, tc := range cases {
		if got := WPM(tc.correct, tc.elapsed); got != tc.want {
			t.Fatalf("WPM(%d, %d) = %d, want %d", tc.correct, tc.elapsed, got, tc.want)
		}
	}
}
