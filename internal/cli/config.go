// Config loading for the tracker CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "TRACKER"
)

// Config keys.
const (
	cfgKeyBackend             = "backend"
	cfgKeyDataDir             = "data_dir"
	cfgKeyFileName            = "file_name"
	cfgKeyDSN                 = "dsn"
	cfgKeyKeepSnapshots       = "keep_snapshots"
	cfgKeyRecomputeEpicStatus = "recompute_epic_status"
	cfgKeyTimeout             = "timeout"
	cfgKeyLogLevel            = "log_level"
)

const (
	defaultBackend  = types.BackendFile
	defaultLogLevel = "warn"
)

// envKeys are the keys that TRACKER_<KEY> environment variables override.
// data_dir is absent: paths.ResolveDataDir ranks TRACKER_DATA_DIR below the
// config file value.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyFileName,
	cfgKeyDSN,
	cfgKeyKeepSnapshots,
	cfgKeyRecomputeEpicStatus,
	cfgKeyTimeout,
	cfgKeyLogLevel,
}

// configFile holds the structure written to config.yaml by init.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	FileName string `yaml:"file_name,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// loadConfig reads config.yaml with Viper. The project config directory is
// searched first, then the per-user config directory. A missing config.yaml
// is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyFileName, types.DefaultFileName)
	v.SetDefault(cfgKeyKeepSnapshots, types.DefaultKeepSnapshots)
	v.SetDefault(cfgKeyRecomputeEpicStatus, false)
	v.SetDefault(cfgKeyTimeout, time.Duration(0))
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if userDir, err := paths.UserConfigDir(); err == nil {
		v.AddConfigPath(userDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// trackerConfig builds the backend configuration from Viper values and the
// resolved data directory.
func trackerConfig(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Backend:             v.GetString(cfgKeyBackend),
		DataDir:             dataDir,
		FileName:            v.GetString(cfgKeyFileName),
		DSN:                 v.GetString(cfgKeyDSN),
		KeepSnapshots:       v.GetInt(cfgKeyKeepSnapshots),
		RecomputeEpicStatus: v.GetBool(cfgKeyRecomputeEpicStatus),
		Timeout:             v.GetDuration(cfgKeyTimeout),
	}
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		Backend:  defaultBackend,
		DataDir:  dataDir,
		LogLevel: defaultLogLevel,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	header := []byte("# Tracker CLI configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
