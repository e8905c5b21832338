package bimrsid

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.BedIn, cfg.BimIn, cfg.FamIn = "in.bed", "in.bim", "in.fam"
	cfg.BedOut, cfg.BimOut, cfg.FamOut = "out.bed", "out.bim", "out.fam"
	cfg.VCF = "ref.vcf.gz"

	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IncludeSexChromosomes {
		t.Error("Sex chromosomes should be included by default")
	}
	if cfg.Workers != 1 {
		t.Errorf("Got %d workers, expected 1", cfg.Workers)
	}
	if cfg.PlinkChromosomeCodes || cfg.CheckTrio || cfg.BuildIndex {
		t.Errorf("Got %+v, expected optional features off", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bimrsid.yaml")
	yml := `bim_in: from-yaml.bim
vcf: ref.vcf.gz
workers: 4
include_sex_chromosomes: false
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BIMRSID_WORKERS", "8")
	t.Setenv("BIMRSID_BIM_OUT", "from-env.bim")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BimIn != "from-yaml.bim" {
		t.Errorf("Got %s, expected from-yaml.bim", cfg.BimIn)
	}
	if cfg.Workers != 8 {
		t.Errorf("Got %d workers, expected the environment to win with 8", cfg.Workers)
	}
	if cfg.BimOut != "from-env.bim" {
		t.Errorf("Got %s, expected from-env.bim", cfg.BimOut)
	}
	if cfg.IncludeSexChromosomes {
		t.Error("Got sex chromosomes included, expected the YAML to disable them")
	}
	if cfg.BatchSize != defaultBatchSize {
		t.Errorf("Got batch size %d, expected the default %d", cfg.BatchSize, defaultBatchSize)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bimrsid.yaml")
	if err := os.WriteFile(path, []byte("wokers: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Got %v, expected ErrInvalidConfig", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Got %v, expected a valid config", err)
	}

	for name, mutate := range map[string]func(*Config){
		"missing bim":        func(c *Config) { c.BimIn = "" },
		"missing vcf":        func(c *Config) { c.VCF = "" },
		"missing fam out":    func(c *Config) { c.FamOut = "" },
		"no workers":         func(c *Config) { c.Workers = 0 },
		"no batch":           func(c *Config) { c.BatchSize = 0 },
		"overwrite input":    func(c *Config) { c.BimOut = "./in.bim" },
		"overwrite vcf":      func(c *Config) { c.BedOut = "ref.vcf.gz" },
		"overwrite index":    func(c *Config) { c.ReportPath = "ref.vcf.gz.rsi" },
		"duplicate outputs":  func(c *Config) { c.FamOut = "out.bim" },
		"report over output": func(c *Config) { c.ReportPath = "out.bed" },
	} {
		cfg := validConfig()
		mutate(&cfg)

		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: Got %v, expected ErrInvalidConfig", name, err)
		}
	}
}

func TestResolvedIndexPath(t *testing.T) {
	cfg := validConfig()
	if got := cfg.ResolvedIndexPath(); got != "ref.vcf.gz"+IndexExtension {
		t.Errorf("Got %s, expected ref.vcf.gz%s", got, IndexExtension)
	}

	cfg.IndexPath = "/data/ref.rsi"
	if got := cfg.ResolvedIndexPath(); got != "/data/ref.rsi" {
		t.Errorf("Got %s, expected /data/ref.rsi", got)
	}
}
