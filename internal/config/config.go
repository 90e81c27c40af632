// Package config loads the poolrdp configuration from TOML and POOLRDP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "POOLRDP"
	EnvConfigPath = "POOLRDP_CONFIG"

	configName  = "config"
	configType  = "toml"
	dataDirName = ".poolrdp"
)

type Config struct {
	PoolName     string       `mapstructure:"pool_name" validate:"required"`
	Domain       string       `mapstructure:"domain" validate:"required"`
	DataDir      string       `mapstructure:"data_dir" validate:"required"`
	ControlPlane ControlPlane `mapstructure:"control_plane"`
	Acquire      Acquire      `mapstructure:"acquire"`
	Profile      Profile      `mapstructure:"profile"`
	Share        Share        `mapstructure:"share"`
	Folders      []string     `mapstructure:"folders"`
	Launch       Launch       `mapstructure:"launch"`
	Sync         Sync         `mapstructure:"sync"`
	Secrets      Secrets      `mapstructure:"secrets"`
	Sessions     Sessions     `mapstructure:"sessions"`
	Log          Log          `mapstructure:"log"`
	Telemetry    Telemetry    `mapstructure:"telemetry"`
}

type ControlPlane struct {
	Kind     string        `mapstructure:"kind" validate:"oneof=ovirt docker"`
	URL      string        `mapstructure:"url" validate:"required_if=Kind ovirt,omitempty,url"`
	CAFile   string        `mapstructure:"ca_file"`
	Insecure bool          `mapstructure:"insecure"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Profile  string        `mapstructure:"profile"`
	Docker   Docker        `mapstructure:"docker"`
}

type Docker struct {
	Host    string  `mapstructure:"host"`
	Image   string  `mapstructure:"image"`
	Network string  `mapstructure:"network"`
	Domain  string  `mapstructure:"domain"`
	Memory  string  `mapstructure:"memory"`
	CPUs    float64 `mapstructure:"cpus" validate:"gte=0"`
}

type Acquire struct {
	MaxIterations int           `mapstructure:"max_iterations" validate:"gt=0"`
	Step          time.Duration `mapstructure:"step" validate:"gt=0"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
	Port          int           `mapstructure:"port" validate:"min=1,max=65535"`
}

type Profile struct {
	Template    string `mapstructure:"template"`
	Destination string `mapstructure:"destination"`
}

type Share struct {
	Drive  string `mapstructure:"drive" validate:"required"`
	Folder string `mapstructure:"folder"`
}

// Launch holds one argv template per launcher step. An empty list disables
// the step.
type Launch struct {
	MapShare             []string `mapstructure:"map_share"`
	UnmapShare           []string `mapstructure:"unmap_share"`
	RegisterCredential   []string `mapstructure:"register_credential"`
	UnregisterCredential []string `mapstructure:"unregister_credential"`
	RunClient            []string `mapstructure:"run_client"`
}

type Sync struct {
	Command []string `mapstructure:"command"`
}

type Secrets struct {
	Backend  string `mapstructure:"backend" validate:"oneof=age pass file chain"`
	Dir      string `mapstructure:"dir"`
	Identity string `mapstructure:"identity"`
}

type Sessions struct {
	Path string `mapstructure:"path"`
}

type Log struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type Telemetry struct {
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}

// Load reads path, or POOLRDP_CONFIG, or <home>/.poolrdp/config.toml. A
// missing default file is not an error; a missing explicit one is.
func Load(path string) (Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, filepath.Join(homeDir, dataDirName))

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		v.SetConfigFile(expandHome(path, homeDir))
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(filepath.Join(homeDir, dataDirName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.resolvePaths(homeDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("pool_name", "")
	v.SetDefault("domain", "")
	v.SetDefault("data_dir", dataDir)

	v.SetDefault("control_plane.kind", "ovirt")
	v.SetDefault("control_plane.url", "")
	v.SetDefault("control_plane.ca_file", "")
	v.SetDefault("control_plane.insecure", false)
	v.SetDefault("control_plane.timeout", 30*time.Second)
	v.SetDefault("control_plane.profile", "")
	v.SetDefault("control_plane.docker.host", "")
	v.SetDefault("control_plane.docker.image", "")
	v.SetDefault("control_plane.docker.network", "")
	v.SetDefault("control_plane.docker.domain", "")
	v.SetDefault("control_plane.docker.memory", "")
	v.SetDefault("control_plane.docker.cpus", 0)

	v.SetDefault("acquire.max_iterations", 120)
	v.SetDefault("acquire.step", time.Second)
	v.SetDefault("acquire.probe_timeout", time.Second)
	v.SetDefault("acquire.port", 3389)

	v.SetDefault("profile.template", "")
	v.SetDefault("profile.destination", "")
	v.SetDefault("share.drive", "Z:")
	v.SetDefault("share.folder", "")
	v.SetDefault("folders", []string{})

	launch := defaultLaunch()
	v.SetDefault("launch.map_share", launch.MapShare)
	v.SetDefault("launch.unmap_share", launch.UnmapShare)
	v.SetDefault("launch.register_credential", launch.RegisterCredential)
	v.SetDefault("launch.unregister_credential", launch.UnregisterCredential)
	v.SetDefault("launch.run_client", launch.RunClient)

	v.SetDefault("sync.command", []string{})

	v.SetDefault("secrets.backend", "chain")
	v.SetDefault("secrets.dir", "")
	v.SetDefault("secrets.identity", "")
	v.SetDefault("sessions.path", "")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.service_name", "poolrdp")
}

// resolvePaths fills every path left empty from DataDir and expands "~".
func (c *Config) resolvePaths(homeDir string) {
	c.DataDir = expandHome(c.DataDir, homeDir)

	fill := func(target *string, name string) {
		if strings.TrimSpace(*target) == "" {
			*target = filepath.Join(c.DataDir, name)
			return
		}
		*target = expandHome(*target, homeDir)
	}

	fill(&c.Profile.Destination, "session.rdp")
	fill(&c.Share.Folder, "shared")
	fill(&c.Secrets.Dir, "secrets")
	fill(&c.Secrets.Identity, "identity.txt")
	fill(&c.Sessions.Path, "sessions.toml")
	fill(&c.Log.File, "poolrdp.log")

	if c.Profile.Template != "" {
		c.Profile.Template = expandHome(c.Profile.Template, homeDir)
	}
	if c.ControlPlane.CAFile != "" {
		c.ControlPlane.CAFile = expandHome(c.ControlPlane.CAFile, homeDir)
	}
	for i, folder := range c.Folders {
		c.Folders[i] = expandHome(folder, homeDir)
	}
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate reports every invalid field, one per line, using config key names.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}

	return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(messages, "\n  "))
}

var ErrInvalidConfig = errors.New("invalid config")

func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", key)
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
}

// configKey turns "Config.acquire.max_iterations" into "acquire.max_iterations".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}

	return key
}
