// Package genprogress tracks how many images the generation backend has
// written for each queued class.
package genprogress

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/CodexForgeBR/trainwatch/internal/queue"
	"github.com/CodexForgeBR/trainwatch/internal/split"
)

// DefaultInterval is how often Watch recounts the output directories.
const DefaultInterval = 3 * time.Second

// ClassProgress is the generation state of one class.
type ClassProgress struct {
	Name       string   `json:"name" yaml:"name"`
	Prompt     string   `json:"prompt" yaml:"prompt"`
	Expected   int      `json:"expected" yaml:"expected"`
	Generated  int      `json:"generated" yaml:"generated"`
	Complete   bool     `json:"complete" yaml:"complete"`
	ImageNames []string `json:"image_names" yaml:"image_names"`
}

// Report aggregates every class.
type Report struct {
	Classes        []ClassProgress `json:"classes" yaml:"classes"`
	TotalExpected  int             `json:"total_expected" yaml:"total_expected"`
	TotalGenerated int             `json:"total_generated" yaml:"total_generated"`
}

// Complete reports whether every class has produced its samples.
func (r *Report) Complete() bool {
	for _, c := range r.Classes {
		if !c.Complete {
			return false
		}
	}
	return true
}

// Percent returns overall progress in [0,100].
func (r *Report) Percent() int {
	if r.TotalExpected == 0 {
		return 100
	}
	pct := r.TotalGenerated * 100 / r.TotalExpected
	if pct > 100 {
		return 100
	}
	return pct
}

// Count lists the images already generated for one class. A missing
// directory means generation has not started and counts as zero.
func Count(outputRoot string, cfg queue.GenerateConfig) (ClassProgress, error) {
	cp := ClassProgress{
		Name:       cfg.Name,
		Prompt:     cfg.Prompt,
		Expected:   cfg.NumSamples,
		ImageNames: []string{},
	}

	dir := filepath.Join(outputRoot, queue.ClassDir(cfg.Name, cfg.Prompt))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cp.Complete = cp.Expected <= 0
			return cp, nil
		}
		return cp, fmt.Errorf("count images for %q: %w", cfg.Prompt, err)
	}

	for _, e := range entries {
		if !e.IsDir() && split.IsImage(e.Name()) {
			cp.ImageNames = append(cp.ImageNames, e.Name())
		}
	}
	sort.Strings(cp.ImageNames)
	cp.Generated = len(cp.ImageNames)
	cp.Complete = cp.Generated >= cp.Expected
	return cp, nil
}

// Collect counts every class in configs. A class whose directory cannot be
// read is reported with zero images and its error joined into the result.
func Collect(outputRoot string, configs []queue.GenerateConfig) (*Report, error) {
	r := &Report{Classes: make([]ClassProgress, 0, len(configs))}
	var errs []error
	for _, cfg := range configs {
		cp, err := Count(outputRoot, cfg)
		if err != nil {
			errs = append(errs, err)
		}
		r.Classes = append(r.Classes, cp)
		r.TotalExpected += cp.Expected
		r.TotalGenerated += cp.Generated
	}
	return r, errors.Join(errs...)
}

// Watch recounts on every tick and hands each report to onUpdate. It
// returns the final report once every class is complete, or ctx.Err().
func Watch(ctx context.Context, outputRoot string, configs []queue.GenerateConfig, interval time.Duration, onUpdate func(*Report, error)) (*Report, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r, err := Collect(outputRoot, configs)
		if onUpdate != nil {
			onUpdate(r, err)
		}
		if err == nil && r.Complete() {
			return r, nil
		}

		select {
		case <-ctx.Done():
			return r, ctx.Err()
		case <-ticker.C:
		}
	}
}
