package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/effectus/explorer/source"
)

type explorerConfig struct {
	Table  tableConfig     `yaml:"table" json:"table"`
	S3     source.S3Config `yaml:"s3" json:"s3"`
	Render renderConfig    `yaml:"render" json:"render"`
	Patch  patchConfig     `yaml:"patch" json:"patch"`
}

type tableConfig struct {
	Path   string `yaml:"path" json:"path"`
	Sheet  string `yaml:"sheet" json:"sheet"`
	Format string `yaml:"format" json:"format"`
}

type renderConfig struct {
	IDColumn   string `yaml:"id_column" json:"id_column"`
	BaseConfig string `yaml:"base_config" json:"base_config"`
}

type patchConfig struct {
	RowDelimiter    string `yaml:"row_delimiter" json:"row_delimiter"`
	ColumnDelimiter string `yaml:"column_delimiter" json:"column_delimiter"`
}

func loadConfig(path string) (*explorerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &explorerConfig{}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config yaml: %w", err)
		}
	}
	return cfg, nil
}

// applyConfig copies config values into opts for every flag the user did not
// set explicitly.
func applyConfig(cfg *explorerConfig, opts *options, setFlags map[string]bool) {
	if cfg == nil {
		return
	}

	if cfg.Table.Path != "" && !setFlags["table"] {
		opts.table = cfg.Table.Path
	}
	if cfg.Table.Sheet != "" && !setFlags["sheet"] {
		opts.sheet = cfg.Table.Sheet
	}
	if cfg.Table.Format != "" && !setFlags["table-format"] {
		opts.tableFormat = cfg.Table.Format
	}

	if cfg.Render.IDColumn != "" && !setFlags["id-column"] {
		opts.idColumn = cfg.Render.IDColumn
	}
	if cfg.Render.BaseConfig != "" && !setFlags["base-config"] {
		opts.baseConfig = cfg.Render.BaseConfig
	}

	if cfg.Patch.RowDelimiter != "" && !setFlags["row-delimiter"] {
		opts.rowDelimiter = cfg.Patch.RowDelimiter
	}
	if cfg.Patch.ColumnDelimiter != "" && !setFlags["column-delimiter"] {
		opts.columnDelimiter = cfg.Patch.ColumnDelimiter
	}

	opts.s3 = cfg.S3
}
