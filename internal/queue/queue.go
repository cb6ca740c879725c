// Package queue loads the JSON job queue shared with the training backend.
package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TrainConfig is one class queued for fine-tuning.
type TrainConfig struct {
	Name            string  `json:"name"`
	Prompt          string  `json:"prompt"`
	DatasetPath     string  `json:"dataset_path"`
	BatchSize       int     `json:"batch_size"`
	LearningRate    float64 `json:"learning_rate"`
	Epochs          int     `json:"epochs"`
	Resolution      int     `json:"resolution"`
	MemoryEfficient bool    `json:"memory_efficient"`
}

// GenerateConfig is one class queued for image generation.
type GenerateConfig struct {
	Name              string  `json:"name"`
	Prompt            string  `json:"prompt"`
	NumSamples        int     `json:"num_samples"`
	Resolution        int     `json:"resolution"`
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
}

// Descriptor is the queue document.
type Descriptor struct {
	TrainConfigs    []TrainConfig    `json:"train_configs"`
	GenerateConfigs []GenerateConfig `json:"generate_configs"`
}

// TotalClasses returns how many classes will be trained in sequence.
func (d *Descriptor) TotalClasses() int {
	return len(d.TrainConfigs)
}

// TotalSamples returns how many images the generate queue expects overall.
func (d *Descriptor) TotalSamples() int {
	n := 0
	for _, g := range d.GenerateConfigs {
		n += g.NumSamples
	}
	return n
}

// Load reads and decodes the queue descriptor at path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queue file: %w", err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode queue file: %w", err)
	}
	return &d, nil
}

// ClassDir returns the backend's per-class directory name under an output
// root: <name>/<prompt with spaces replaced by underscores>.
func ClassDir(name, prompt string) string {
	return filepath.Join(name, strings.ReplaceAll(prompt, " ", "_"))
}
