package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
	toml "github.com/pelletier/go-toml/v2"
)

const defaultConfigPath = "~/.config/logslice/config.toml"

// File holds the settings read from the TOML config file. Every key is optional.
//
//	date_regex  = '^(\S+ \S+)'
//	date_grok   = '%{TIMESTAMP_ISO8601:timestamp}'
//	separator   = "--"
//	on_bad_date = "warn"
//	color       = "auto"
//	db          = "~/slices.duckdb"
type File struct {
	DateRegex string  `toml:"date_regex"`
	DateGrok  string  `toml:"date_grok"`
	Separator *string `toml:"separator"`
	OnBadDate string  `toml:"on_bad_date"`
	Color     string  `toml:"color"`
	DB        string  `toml:"db"`
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields an empty File.
func Load(path string) (File, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return File{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return File{}, nil
		}
		return File{}, errors.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return File{}, errors.Errorf("read config: %w", err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, errors.Errorf("parse config %s: %w", resolved, err)
	}
	if f.DB != "" {
		if f.DB, err = expandPath(f.DB); err != nil {
			return File{}, err
		}
	}
	return f, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", errors.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
