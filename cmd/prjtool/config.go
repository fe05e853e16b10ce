package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	formatPretty  = "pretty"
	formatCompact = "compact"
)

// Config is the prjtool configuration. Every field has a default, so the
// config file is optional.
type Config struct {
	LogLevel string
	Editor   string
	// Format is the JSON layout used by dump and edit.
	Format string
	Backup BackupConfig
}

// BackupConfig controls the copies edit writes before overwriting a file.
type BackupConfig struct {
	Enabled bool
	Codec   string
	// Dir defaults to the directory of the edited file.
	Dir string
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Format:   formatPretty,
		Backup: BackupConfig{
			Enabled: true,
			Codec:   codecLZ4,
		},
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "prjtool", "prjtool.ini")
}

// loadConfig reads path over the defaults. A missing file is an error only
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, err
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.LogLevel = f.Section("log").Key("level").MustString(cfg.LogLevel)
	cfg.Editor = f.Section("edit").Key("editor").MustString(cfg.Editor)
	cfg.Format = f.Section("edit").Key("format").In(cfg.Format, []string{formatPretty, formatCompact})

	backup := f.Section("backup")
	cfg.Backup.Enabled = backup.Key("enabled").MustBool(cfg.Backup.Enabled)
	cfg.Backup.Dir = backup.Key("dir").MustString(cfg.Backup.Dir)
	cfg.Backup.Codec = backup.Key("codec").MustString(cfg.Backup.Codec)
	if _, err := backupExt(cfg.Backup.Codec); err != nil {
		return cfg, fmt.Errorf("%s: [backup] codec: %w", path, err)
	}

	return cfg, nil
}
