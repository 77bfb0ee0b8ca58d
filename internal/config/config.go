// Package config loads project configuration via viper: the primary
// source dialect, the excluded secondary-dialect extension, the
// configured test-declaring macros, and cache file locations. Values can
// come from a ".selectest.yaml" project file or SELECTEST_* environment
// variables; no CLI flags are bound into this configuration.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/arlojordan/selectest/internal/fqs"
)

// Config is the resolved project configuration.
type Config struct {
	PrimaryDialect    string
	ExcludedExtension string
	TestMacros        []fqs.FQS
	SnapshotPath      string
	BaselinePath      string
}

// Load reads configuration from ".selectest.yaml" (or ".selectest.yml")
// in projectRoot, overlaid with SELECTEST_*-prefixed environment
// variables, falling back to defaults when both are silent. A missing
// config file is not an error — the defaults apply.
func Load(projectRoot string) (Config, error) {
	v := viper.New()
	v.SetConfigName(".selectest")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectRoot)
	v.SetEnvPrefix("SELECTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("primary_dialect", "clj")
	v.SetDefault("excluded_extension", ".cljs")
	v.SetDefault("test_macros", []string{"test/deftest", "test.check/defspec"})
	v.SetDefault("snapshot_path", ".selectest-snapshot")
	v.SetDefault("baseline_path", ".selectest-baseline")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}

	macroStrings := v.GetStringSlice("test_macros")
	macros := make([]fqs.FQS, 0, len(macroStrings))
	for _, s := range macroStrings {
		if sym, ok := fqs.Parse(s); ok {
			macros = append(macros, sym)
		}
	}

	return Config{
		PrimaryDialect:    v.GetString("primary_dialect"),
		ExcludedExtension: v.GetString("excluded_extension"),
		TestMacros:        macros,
		SnapshotPath:      v.GetString("snapshot_path"),
		BaselinePath:      v.GetString("baseline_path"),
	}, nil
}
