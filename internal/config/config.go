package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel   string       `mapstructure:"log_level"`
	Output     Output       `mapstructure:"output"`
	Sources    Sources      `mapstructure:"sources"`
	Aggregate  Aggregate    `mapstructure:"aggregate"`
	Render     RenderConfig `mapstructure:"render"`
	Metrics    Metrics      `mapstructure:"metrics"`
	RawSources map[string]any
}

type Output struct {
	HostsCfg      string `mapstructure:"hosts_cfg"`
	HostgroupsCfg string `mapstructure:"hostgroups_cfg"`
	Mode          string `mapstructure:"mode"` // octal, e.g. "0644"
	HostsFile     string `mapstructure:"hosts_file"`
}

type Sources struct {
	LayerTree LayerTreeSource `mapstructure:"layer_tree"`
	Search    SearchSource    `mapstructure:"search"`
	Etcd      EtcdSource      `mapstructure:"etcd"`
}

type LayerTreeSource struct {
	File       string `mapstructure:"file"`
	LayersPath string `mapstructure:"layers_path"`
}

type SearchSource struct {
	URL      string `mapstructure:"url"`
	Query    string `mapstructure:"query"`
	PageSize int    `mapstructure:"page_size"`
}

type EtcdSource struct {
	Endpoints []string `mapstructure:"endpoints"`
	Prefix    string   `mapstructure:"prefix"`
}

type Aggregate struct {
	ZonePrefix string `mapstructure:"zone_prefix"`
}

type RenderConfig struct {
	HostTemplate           string `mapstructure:"host_template"` // Nagios host template to inherit from
	HostsTemplateFile      string `mapstructure:"hosts_template_file"`
	HostgroupsTemplateFile string `mapstructure:"hostgroups_template_file"`
	HostsfilePrefix        string `mapstructure:"hostsfile_prefix"`
	HostsfileStackPrefix   bool   `mapstructure:"hostsfile_stack_prefix"` // "<stack>-" when no prefix is set
}

type Metrics struct {
	Textfile string `mapstructure:"textfile"`
}

// FileMode parses Output.Mode as an octal permission.
func (o Output) FileMode() (os.FileMode, error) {
	if o.Mode == "" {
		return 0644, nil
	}
	m, err := strconv.ParseUint(o.Mode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid output mode %q: %w", o.Mode, err)
	}
	return os.FileMode(m) & os.ModePerm, nil
}

// SetSourceField overrides one key of a source section, creating the section
// if needed. Collectors read RawSources, so flag overrides go through here.
func (c *Config) SetSourceField(source, field string, value any) {
	if c.RawSources == nil {
		c.RawSources = make(map[string]any)
	}
	section, ok := c.RawSources[source].(map[string]any)
	if !ok {
		section = make(map[string]any)
		c.RawSources[source] = section
	}
	section[field] = value
}

// EnvPrefix namespaces environment overrides: output.hosts_cfg is read from
// FLEETMON_OUTPUT_HOSTS_CFG.
const EnvPrefix = "FLEETMON"

// Optional source keys with no default. They are bound explicitly so env
// overrides reach the collectors through RawSources.
var sourceEnvKeys = []string{
	"sources.search.token",
	"sources.search.test_file",
	"sources.search.timeout",
	"sources.search.attempts",
	"sources.search.retry_delay",
	"sources.etcd.username",
	"sources.etcd.password",
	"sources.etcd.dial_timeout",
}

// BindEnv registers defaults and environment overrides on the global viper
// instance. Safe to call more than once.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("log_level", "warn")
	viper.SetDefault("output.hosts_cfg", "/etc/nagios/conf.d/hosts.cfg")
	viper.SetDefault("output.hostgroups_cfg", "/etc/nagios/conf.d/hostgroups.cfg")
	viper.SetDefault("output.mode", "0644")
	viper.SetDefault("output.hosts_file", "")
	viper.SetDefault("sources.layer_tree.file", "")
	viper.SetDefault("sources.layer_tree.layers_path", "opsworks.layers")
	viper.SetDefault("sources.search.url", "")
	viper.SetDefault("sources.search.query", "role:*")
	viper.SetDefault("sources.search.page_size", 1000)
	viper.SetDefault("sources.etcd.endpoints", []string{})
	viper.SetDefault("sources.etcd.prefix", "/fleet/nodes/")
	viper.SetDefault("aggregate.zone_prefix", "")
	viper.SetDefault("render.host_template", "linux-server")
	viper.SetDefault("render.hosts_template_file", "")
	viper.SetDefault("render.hostgroups_template_file", "")
	viper.SetDefault("render.hostsfile_prefix", "")
	viper.SetDefault("render.hostsfile_stack_prefix", true)
	viper.SetDefault("metrics.textfile", "")

	for _, key := range sourceEnvKeys {
		_ = viper.BindEnv(key)
	}
}

func Load() (*Config, error) {
	BindEnv()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// An unquoted 0644 reaches us as the integer 420.
	switch m := viper.Get("output.mode").(type) {
	case int:
		cfg.Output.Mode = strconv.FormatInt(int64(m), 8)
	case int64:
		cfg.Output.Mode = strconv.FormatInt(m, 8)
	}

	// AllSettings merges file, defaults and env; GetStringMap would only
	// see the file's sources mapping.
	cfg.RawSources = make(map[string]any)
	if sources, ok := viper.AllSettings()["sources"].(map[string]any); ok {
		cfg.RawSources = sources
	}

	return cfg, nil
}
