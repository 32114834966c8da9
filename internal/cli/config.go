package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/storymarket/go-storymarket/core"
	"github.com/storymarket/go-storymarket/openapi_schema"
)

// Configuration keys. Each one is also a persistent flag and can be set
// through STORYMARKET_<KEY> (dashes become underscores).
const (
	keyConfig     = "config"
	keyHost       = "host"
	keyPort       = "port"
	keyScheme     = "scheme"
	keyApiKey     = "api-key"
	keyApiVersion = "api-version"
	keyInsecure   = "insecure"
	keyTimeout    = "timeout"
	keyOutput     = "output"
	keyValidate   = "validate"
)

const (
	EnvPrefix      = "STORYMARKET"
	configFileName = ".storymarket"
)

// bindFlags registers the global flags on cmd and binds them to v.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String(keyConfig, "", "config file (default $HOME/.storymarket.yaml)")
	flags.String(keyHost, core.DefaultHost, "API host")
	flags.Uint64(keyPort, 0, "API port (0 uses the scheme default)")
	flags.String(keyScheme, core.DefaultScheme, "http or https")
	flags.String(keyApiKey, "", "API key")
	flags.String(keyApiVersion, core.DefaultApiVersion, "API version")
	flags.Bool(keyInsecure, false, "skip TLS certificate verification")
	flags.Duration(keyTimeout, 30*time.Second, "request timeout")
	flags.StringP(keyOutput, "o", formatTable, "output format: table, json or msgpack")
	flags.Bool(keyValidate, false, "check write payloads against the OpenAPI schema before sending")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// readConfigFile loads .env from the working directory and then the YAML
// config file. A missing file of either kind is not an error.
func readConfigFile(v *viper.Viper) error {
	_ = godotenv.Load()

	path := v.GetString(keyConfig)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return fmt.Errorf("read config %s: %w", filepath.Clean(path), err)
		}
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// loadConfig turns the merged settings into a client config.
func loadConfig(v *viper.Viper) (*core.Config, error) {
	apiKey := v.GetString(keyApiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: pass --%s or set %s_API_KEY", keyApiKey, EnvPrefix)
	}
	scheme := v.GetString(keyScheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", scheme)
	}
	timeout := v.GetDuration(keyTimeout)
	config := &core.Config{
		Host:       v.GetString(keyHost),
		Port:       v.GetUint64(keyPort),
		Scheme:     scheme,
		ApiKey:     apiKey,
		ApiVersion: v.GetString(keyApiVersion),
		SslVerify:  !v.GetBool(keyInsecure),
		Timeout:    &timeout,
	}
	if v.GetBool(keyValidate) {
		config.BeforeRequestFn = openapi_schema.ValidateBeforeRequest
	}
	return config, nil
}
