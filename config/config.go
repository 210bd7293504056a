package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config represents the application configuration.
type Config struct {
	DataDir    string `hcl:"data_dir,optional"`    // Directory of source files
	DBPath     string `hcl:"db_path,optional"`     // SQLite database file
	SampleSize int    `hcl:"sample_size,optional"` // Data rows sampled for type inference
	BatchSize  int    `hcl:"batch_size,optional"`  // Rows between progress log lines
	RowLimit   int    `hcl:"row_limit,optional"`   // Max rows returned by the report query
	LogLevel   string `hcl:"log_level,optional"`   // debug, info, warn or error
	LogJSON    bool   `hcl:"log_json,optional"`    // Emit JSON log lines instead of text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "data",
		DBPath:     "ecommerce.db",
		SampleSize: 100,
		BatchSize:  1000,
		RowLimit:   50,
		LogLevel:   "info",
	}
}

// Load reads the configuration from the given HCL file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
	}

	return cfg, nil
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("data_dir", cty.StringVal(cfg.DataDir))
	root.SetAttributeValue("db_path", cty.StringVal(cfg.DBPath))
	root.SetAttributeValue("sample_size", cty.NumberIntVal(int64(cfg.SampleSize)))
	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	root.SetAttributeValue("row_limit", cty.NumberIntVal(int64(cfg.RowLimit)))
	root.SetAttributeValue("log_level", cty.StringVal(cfg.LogLevel))
	root.SetAttributeValue("log_json", cty.BoolVal(cfg.LogJSON))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
