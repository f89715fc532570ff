package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings that may be stored in the config file.
var configKeys = []string{keyCanonical, keyChrom, keyBGZF, keyLevel, keyVerbose}

func newConfigCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gtf3prime configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/" + configFileName + ".",
		Example: `  gtf3prime config                                  # show all config
  gtf3prime config set canonical /data/canonical.tsv  # default canonical table
  gtf3prime config get chrom                          # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, *cfgFile)
		},
	}

	cmd.AddCommand(newConfigSetCmd(cfgFile))
	cmd.AddCommand(newConfigGetCmd(v))

	return cmd
}

func newConfigSetCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, *cfgFile, args[0], args[1])
		},
	}
}

func newConfigGetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, v, args[0])
		},
	}
}

// fileConfig loads only what is stored in the config file, without flag
// defaults or environment overrides.
func fileConfig(cfgFile string) (*viper.Viper, string, error) {
	path, err := configPath(cfgFile)
	if err != nil {
		return nil, "", err
	}

	fv := viper.New()
	fv.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := fv.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return fv, path, nil
}

func runConfigShow(cmd *cobra.Command, cfgFile string) error {
	fv, path, err := fileConfig(cfgFile)
	if err != nil {
		return err
	}

	settings := fv.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "# No configuration set. Config file: %s\n", path)
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, cfgFile, key, value string) error {
	key = strings.ToLower(key)
	if !validConfigKey(key) {
		return &usageError{msg: fmt.Sprintf("unknown config key %q (valid: %s)", key, strings.Join(sortedKeys(), ", "))}
	}

	fv, path, err := fileConfig(cfgFile)
	if err != nil {
		return err
	}

	// Parse boolean-like values
	switch value {
	case "true", "yes", "on":
		fv.Set(key, true)
	case "false", "no", "off":
		fv.Set(key, false)
	default:
		fv.Set(key, value)
	}

	if err := fv.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)
	return nil
}

func runConfigGet(cmd *cobra.Command, v *viper.Viper, key string) error {
	val := v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

func validConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

func sortedKeys() []string {
	keys := append([]string(nil), configKeys...)
	sort.Strings(keys)
	return keys
}
