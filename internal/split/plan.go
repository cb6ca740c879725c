package split

// Assignment pairs a file with the subset it was assigned to.
type Assignment struct {
	File  string `json:"file" yaml:"file"`
	Label Label  `json:"label" yaml:"label"`
}

// Counts tallies assignments per subset.
type Counts map[Label]int

// Total returns the number of assignments counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Share returns the fraction of assignments that went to l.
func (c Counts) Share(l Label) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	return float64(c[l]) / float64(total)
}

// Plan assigns every file in order. The result has one entry per input file,
// in input order; duplicates are assigned (identically) each time they appear.
func Plan(files []string, seed Seed) []Assignment {
	out := make([]Assignment, 0, len(files))
	for _, f := range files {
		out = append(out, Assignment{File: f, Label: seed.Assign(f)})
	}
	return out
}

// Tally counts a plan by subset. Every subset is present, even when empty.
func Tally(plan []Assignment) Counts {
	c := Counts{Train: 0, Test: 0, Valid: 0}
	for _, a := range plan {
		c[a.Label]++
	}
	return c
}
