package cli

import (
	"os"

	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/paveg/linframe/internal/config"
)

// defaultConfigFiles are looked up in the working directory when no
// --config flag is given.
var defaultConfigFiles = []string{"linframe.yaml", "linframe.yml"}

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"workers":           "worker_pool_size",
	"default-unmatched": "default_unmatched",
	"max-line-len":      "max_line_len",
	"max-rows":          "max_rows",
	"float-precision":   "float_precision",
	"verbose":           "verbose_logging",
	"metrics":           "metrics_collection",
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range defaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig layers defaults, the config file, LINFRAME_* environment
// variables and explicitly set flags, later layers winning.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (config.Config, error) {
	var overrides []koanf.Provider
	if flags != nil {
		overrides = append(overrides, posflag.ProviderWithFlag(flags, ".", nil, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}))
	}
	return config.Load(findConfigFile(cfgFile), overrides...)
}
