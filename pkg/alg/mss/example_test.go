package mss_test

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
)

func ExampleFind() {
	values := []int{1, -2, 3, -2, 4, -1, -2, 1, -1, 3}

	for _, r := range mss.Find(values, 0) {
		fmt.Println(r, mss.Score(values, 0, r))
	}

	// Output:
	// [0,1) 1
	// [2,5) 5
	// [7,8) 1
	// [9,10) 3
}

func ExampleScanFunc() {
	type reading struct {
		at    string
		level float64
	}

	readings := []reading{{"06:00", 1.5}, {"07:00", 0.8}, {"08:00", 2.5}, {"09:00", -4}, {"10:00", 1.2}}

	mss.ScanFunc(slices.Values(readings), func(r reading) float64 { return r.level }, 1.0, mss.SinkFunc(func(r mss.Range) {
		fmt.Printf("%s-%s\n", readings[r.Begin].at, readings[r.End-1].at)
	}))

	// Output:
	// 06:00-08:00
	// 10:00-10:00
}
