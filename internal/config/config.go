package config

import (
	"fmt"
	"strings"

	"github.com/mwengren/kuberr/internal/setupxml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultERDDAPVersion = "1.82"
	DefaultAppName       = "noapp"
	DefaultReleaseName   = "release-name"
	DefaultContentURL    = "https://raw.githubusercontent.com/mwengren/erddap-content/master"

	ContentConfigMapPrefix = "content"
	ImagesConfigMapPrefix  = "images"
	ServiceSuffix          = "erddap-service"

	redacted = "<redacted>"
)

// Environment variable names read by Load.
const (
	EnvERDDAPVersion        = "ERDDAP_VERSION"
	EnvAppName              = "APPNAME"
	EnvDomainName           = "DOMAINNAME"
	EnvReleaseName          = "RELEASENAME"
	EnvContentURL           = "ERDDAP_CONTENT_URL"
	EnvBaseURLTrailingSlash = "BASEURL_TRAILING_SLASH"
)

// Config is the process configuration. It is built once at start and passed
// by pointer to every component.
type Config struct {
	ERDDAPVersion        string            `yaml:"erddapVersion"`
	AppName              string            `yaml:"appName"`
	DomainName           string            `yaml:"domainName,omitempty"`
	ReleaseName          string            `yaml:"releaseName"`
	ContentURL           string            `yaml:"contentURL"`
	BaseURLTrailingSlash bool              `yaml:"baseURLTrailingSlash"`
	Setup                setupxml.Settings `yaml:"setup"`
}

// NewViper returns a viper instance that reads the process environment and
// carries the defaults for every variable Load consumes.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(EnvERDDAPVersion, DefaultERDDAPVersion)
	v.SetDefault(EnvAppName, DefaultAppName)
	v.SetDefault(EnvReleaseName, DefaultReleaseName)
	v.SetDefault(EnvContentURL, DefaultContentURL)
	v.SetDefault(EnvBaseURLTrailingSlash, false)

	return v
}

// Load builds a Config from v. Values for the setup.xml fields are captured
// here so that later stages never read the environment themselves.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ERDDAPVersion:        strings.TrimSpace(v.GetString(EnvERDDAPVersion)),
		AppName:              strings.ToLower(strings.TrimSpace(v.GetString(EnvAppName))),
		DomainName:           strings.TrimSpace(v.GetString(EnvDomainName)),
		ReleaseName:          strings.ToLower(strings.TrimSpace(v.GetString(EnvReleaseName))),
		ContentURL:           strings.TrimRight(strings.TrimSpace(v.GetString(EnvContentURL)), "/"),
		BaseURLTrailingSlash: v.GetBool(EnvBaseURLTrailingSlash),
		Setup:                setupxml.Settings{},
	}

	for _, field := range setupxml.Fields {
		cfg.Setup[field.EnvVar] = v.GetString(field.EnvVar)
	}

	err := cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppName == "" {
		return fmt.Errorf("%s is required", EnvAppName)
	}

	if c.ReleaseName == "" {
		return fmt.Errorf("%s is required", EnvReleaseName)
	}

	if c.ERDDAPVersion == "" {
		return fmt.Errorf("%s is required", EnvERDDAPVersion)
	}

	if c.ContentURL == "" {
		return fmt.Errorf("%s is required", EnvContentURL)
	}

	return nil
}

// Namespace is the namespace every resource lives in. It is the application name.
func (c *Config) Namespace() string {
	return c.AppName
}

func (c *Config) ContentConfigMapName() string {
	return fmt.Sprintf("%s-%s", ContentConfigMapPrefix, c.AppName)
}

func (c *Config) ImagesConfigMapName() string {
	return fmt.Sprintf("%s-%s", ImagesConfigMapPrefix, c.AppName)
}

// ServiceName is the name the ERDDAP Helm chart gives the service of a release.
func (c *Config) ServiceName() string {
	return fmt.Sprintf("%s-%s-%s", c.ReleaseName, c.AppName, ServiceSuffix)
}

// Dump renders the configuration as YAML with secret values redacted.
func (c *Config) Dump() ([]byte, error) {
	out := *c
	out.Setup = setupxml.Settings{}

	for _, field := range setupxml.Fields {
		value := c.Setup[field.EnvVar]
		if field.Secret && value != "" {
			value = redacted
		}

		out.Setup[field.EnvVar] = value
	}

	b, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("could not marshal config to YAML: %w", err)
	}

	return b, nil
}
