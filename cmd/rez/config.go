package main

import (
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// config holds the collaborator-facing CLI settings spec.md §6 leaves
// to the CLI (it names no config schema of its own): the repository
// root to scan, where the disk cache tier lives, and the default shell
// rex scripts are emitted for. Defaults come from defaultConfig (the
// struct tags only name the keys) and are overridden by REZ_-prefixed
// environment variables, e.g.
// REZ_REPO_ROOT, REZ_CACHE_DIR, REZ_SHELL, REZ_LOG_LEVEL.
type config struct {
	RepoRoot string `koanf:"repo_root"`
	CacheDir string `koanf:"cache_dir"`
	Shell    string `koanf:"shell"`
	LogLevel string `koanf:"log_level"`
}

func defaultConfig() config {
	return config{
		RepoRoot: ".",
		CacheDir: "",
		Shell:    "bash",
		LogLevel: "info",
	}
}

// loadConfig layers environment overrides over the built-in defaults,
// the same koanf.Provider-chaining idiom the package's own doc
// examples use for merging config sources.
func loadConfig() (config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return config{}, err
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: "REZ_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "REZ_"))
			return key, value
		},
	}), nil); err != nil {
		return config{}, err
	}

	var cfg config
	if err := k.Unmarshal("", &cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
