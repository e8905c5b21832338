package bimrsid

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/carbocation/genomisc"
	"github.com/carbocation/pfx"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is prepended to the environment variable of every Config field,
// e.g. BIMRSID_BIM_IN.
const EnvPrefix = "BIMRSID"

// Config describes one update pass. The three inputs and three outputs form
// PLINK binary trios; VCF names the reference whose index supplies rsIDs.
type Config struct {
	BedIn  string `yaml:"bed_in" envconfig:"BED_IN"`
	BimIn  string `yaml:"bim_in" envconfig:"BIM_IN"`
	FamIn  string `yaml:"fam_in" envconfig:"FAM_IN"`
	VCF    string `yaml:"vcf" envconfig:"VCF"`
	BedOut string `yaml:"bed_out" envconfig:"BED_OUT"`
	BimOut string `yaml:"bim_out" envconfig:"BIM_OUT"`
	FamOut string `yaml:"fam_out" envconfig:"FAM_OUT"`

	// IndexPath overrides the default index location, VCF + ".rsi".
	IndexPath string `yaml:"index" envconfig:"INDEX"`

	// BuildIndex builds the index from VCF when it does not exist yet.
	BuildIndex bool `yaml:"build_index" envconfig:"BUILD_INDEX"`

	// ReportPath, if set, receives an Arrow IPC file with one row per marker.
	ReportPath string `yaml:"report" envconfig:"REPORT"`

	Workers   int `yaml:"workers" envconfig:"WORKERS"`
	BatchSize int `yaml:"batch_size" envconfig:"BATCH_SIZE"`

	IncludeSexChromosomes bool `yaml:"include_sex_chromosomes" envconfig:"INCLUDE_SEX_CHROMOSOMES"`
	PlinkChromosomeCodes  bool `yaml:"plink_chromosome_codes" envconfig:"PLINK_CHROMOSOME_CODES"`
	CheckTrio             bool `yaml:"check_trio" envconfig:"CHECK_TRIO"`
}

func DefaultConfig() Config {
	return Config{
		Workers:               1,
		BatchSize:             defaultBatchSize,
		IncludeSexChromosomes: true,
	}
}

// LoadConfig starts from DefaultConfig, then applies the YAML file at path
// (skipped when path is empty) and finally any BIMRSID_* environment
// variables. Command line flags are left to the caller.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(genomisc.ExpandHome(path))
		if err != nil {
			return cfg, pfx.Err(err)
		}
		if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// ResolvedIndexPath is the index the pass will open.
func (c Config) ResolvedIndexPath() string {
	if c.IndexPath != "" {
		return c.IndexPath
	}

	return IndexPath(c.VCF)
}

// Validate checks the constraints between fields. It does not touch the
// filesystem.
func (c Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"bed_in", c.BedIn},
		{"bim_in", c.BimIn},
		{"fam_in", c.FamIn},
		{"vcf", c.VCF},
		{"bed_out", c.BedOut},
		{"bim_out", c.BimOut},
		{"fam_out", c.FamOut},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, r.name)
		}
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be at least 1, got %d", ErrInvalidConfig, c.BatchSize)
	}

	inputs := []string{c.BedIn, c.BimIn, c.FamIn, c.VCF, c.ResolvedIndexPath()}
	outputs := []string{c.BedOut, c.BimOut, c.FamOut}
	if c.ReportPath != "" {
		outputs = append(outputs, c.ReportPath)
	}

	seen := make(map[string]string)
	for _, in := range inputs {
		seen[cleanPath(in)] = "input"
	}
	for _, out := range outputs {
		key := cleanPath(out)
		if kind, exists := seen[key]; exists {
			return fmt.Errorf("%w: %s is used as an output and as an %s", ErrInvalidConfig, out, kind)
		}
		seen[key] = "output"
	}

	return nil
}

func cleanPath(path string) string {
	if isGoogleStorage(path) {
		return path
	}

	return filepath.Clean(genomisc.ExpandHome(path))
}
