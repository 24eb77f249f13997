package pipeline

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/riyaghate/datacenter-detection/cluster"
)

// Config tunes how a tile is divided into patches and how detections are
// filtered and merged.
type Config struct {
	// PatchSize is the square patch edge fed to the detector, in pixels.
	PatchSize int `json:"patch_size"`
	// PatchOverlap is how much adjacent patches overlap, in pixels, so
	// structures on a seam are fully visible in at least one patch.
	PatchOverlap int `json:"patch_overlap"`
	// MinScore drops raw detections below this confidence before
	// normalization.
	MinScore float64 `json:"min_score"`
	// Workers bounds how many patches run through the detector at once.
	Workers int `json:"workers"`
	Cluster cluster.Config `json:"cluster"`
}

// DefaultConfig matches the settings the detector was tuned with: 640px
// model input, 100px overlap, and a 0.85 confidence floor.
func DefaultConfig() Config {
	return Config{
		PatchSize:    640,
		PatchOverlap: 100,
		MinScore:     0.85,
		Workers:      4,
		Cluster:      cluster.DefaultConfig(),
	}
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if c.PatchSize <= 0 {
		return errors.Errorf("patch_size %d must be positive", c.PatchSize)
	}
	if c.PatchOverlap < 0 || c.PatchOverlap >= c.PatchSize {
		return errors.Errorf("patch_overlap %d must be in [0, patch_size %d)", c.PatchOverlap, c.PatchSize)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return errors.Errorf("min_score %v must be in [0, 1]", c.MinScore)
	}
	if c.Workers <= 0 {
		return errors.Errorf("workers %d must be positive", c.Workers)
	}
	if err := c.Cluster.Validate(); err != nil {
		return errors.Wrap(err, "cluster")
	}
	return nil
}

// ReadConfig loads a pipeline config from a JSON file. Fields absent from
// the file keep their defaults.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read config %q", path)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "cannot parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %q", path)
	}
	return cfg, nil
}
