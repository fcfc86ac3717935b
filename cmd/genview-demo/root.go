package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pthm/genview/internal/demo"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	root := &cobra.Command{
		Use:          "genview-demo",
		Short:        "Serve the genview todo demo",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./genview.yaml if present)")

	root.AddCommand(newServeCmd(v), newConfigCmd(v))
	return root
}

// initConfig layers defaults, the config file and GENVIEW_* environment
// variables. A missing default config file is not an error.
func initConfig(v *viper.Viper, cfgFile string) error {
	defaults := demo.Defaults()
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("secret", defaults.Secret)
	v.SetDefault("renderer", defaults.Renderer)
	v.SetDefault("router", "std")
	v.SetDefault("store.driver", defaults.Store.Driver)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetEnvPrefix("genview")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("genview")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		if cfgFile == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (demo.Config, error) {
	var cfg demo.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
