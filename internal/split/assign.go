// Package split assigns dataset files to train, test, and valid subsets.
//
// The assignment is a pure function of the file name and a SplitSeed: the
// same file under the same seed always lands in the same subset, so a dataset
// can be re-split on every run without keeping a manifest.
package split

import (
	"fmt"
	"unicode/utf16"
)

// Label names one of the three dataset subsets.
type Label string

const (
	Train Label = "train"
	Test  Label = "test"
	Valid Label = "valid"
)

// Labels lists every subset in directory-creation order.
var Labels = []Label{Train, Test, Valid}

// Seed is the immutable split configuration for one dataset-preparation run.
// TrainRatio and TestRatio are shares in [0,1]; whatever remains goes to valid.
type Seed struct {
	Seed       int64
	TrainRatio float64
	TestRatio  float64
}

// ValidRatio returns the share left for the valid subset.
func (s Seed) ValidRatio() float64 {
	v := 1 - s.TrainRatio - s.TestRatio
	if v < 0 {
		return 0
	}
	return v
}

// Validate reports ratios outside [0,1] or summing above 1.
// Assign never calls it; validation belongs to whoever builds the Seed.
func (s Seed) Validate() error {
	if s.TrainRatio < 0 || s.TrainRatio > 1 {
		return fmt.Errorf("train ratio must be within [0,1], got %g", s.TrainRatio)
	}
	if s.TestRatio < 0 || s.TestRatio > 1 {
		return fmt.Errorf("test ratio must be within [0,1], got %g", s.TestRatio)
	}
	if s.TrainRatio+s.TestRatio > 1 {
		return fmt.Errorf("train ratio + test ratio must not exceed 1, got %g", s.TrainRatio+s.TestRatio)
	}
	return nil
}

// Assign returns the subset for fileName under this seed.
func (s Seed) Assign(fileName string) Label {
	return Assign(fileName, s.Seed, s.TrainRatio, s.TestRatio)
}

// Assign maps a file name to a subset.
//
// The seed is folded with every UTF-16 code unit of fileName through a
// 31-multiplier rolling hash, the hash seeds a mulberry32 generator, and the
// single value it draws is compared against the cumulative ratios.
//
// Precondition: ratios in [0,1] with trainRatio+testRatio <= 1. Out-of-range
// ratios are not rejected; trainRatio+testRatio >= 1 simply makes valid
// unreachable and trainRatio == 0 makes train unreachable.
func Assign(fileName string, seed int64, trainRatio, testRatio float64) Label {
	v := mulberry32(nameHash(fileName, seed))
	switch {
	case v < trainRatio:
		return Train
	case v < trainRatio+testRatio:
		return Test
	default:
		return Valid
	}
}

// nameHash computes hash = hash*31 + c over UTF-16 code units, mod 2^32.
func nameHash(fileName string, seed int64) uint32 {
	h := uint32(seed)
	for _, c := range utf16.Encode([]rune(fileName)) {
		h = (h << 5) - h + uint32(c)
	}
	return h
}

// mulberry32 draws one uniform value in [0,1) from a generator seeded with a.
func mulberry32(a uint32) float64 {
	a += 0x6D2B79F5
	t := (a ^ a>>15) * (a | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}
