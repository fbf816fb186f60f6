package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/codeangel0930/kintone-rest-api-client/pkg/database"
	"github.com/codeangel0930/kintone-rest-api-client/pkg/record"
	"github.com/codeangel0930/kintone-rest-api-client/pkg/transport"
)

// Config is the client configuration read from an HCL file.
type Config struct {
	// LogLevel is an hclog level name (trace, debug, info, warn, error).
	// Default: info
	LogLevel string `hcl:"log_level,optional"`

	Kintone *KintoneConfig `hcl:"kintone,block"`
	Mirror  *MirrorConfig  `hcl:"mirror,block"`
}

// KintoneConfig configures the connection to a kintone domain.
type KintoneConfig struct {
	BaseURL      string            `hcl:"base_url"`
	GuestSpaceID int               `hcl:"guest_space_id,optional"`
	Timeout      string            `hcl:"timeout,optional"`     // e.g. "30s"
	MaxRetries   int               `hcl:"max_retries,optional"`
	RetryDelay   string            `hcl:"retry_delay,optional"` // e.g. "1s"
	TLSVerify    *bool             `hcl:"tls_verify,optional"`
	Headers      map[string]string `hcl:"headers,optional"`
}

// MirrorConfig configures the database of the record mirror.
type MirrorConfig struct {
	Driver          string `hcl:"driver"` // "postgres" or "sqlite"
	DSN             string `hcl:"dsn"`
	MaxIdleConns    int    `hcl:"max_idle_conns,optional"`
	MaxOpenConns    int    `hcl:"max_open_conns,optional"`
	ConnMaxLifetime string `hcl:"conn_max_lifetime,optional"`
	ConnMaxIdleTime string `hcl:"conn_max_idle_time,optional"`
}

// LoadFile loads and validates a configuration file from the OS filesystem.
func LoadFile(filename string) (*Config, error) {
	return LoadFS(afero.NewOsFs(), filename)
}

// LoadFS loads and validates a configuration file from fs.
func LoadFS(fs afero.Fs, filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration file path is required")
	}

	src, err := afero.ReadFile(fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return Decode(filename, src)
}

// Decode parses and validates configuration source. The filename suffix
// selects the syntax (".hcl" or ".json") and is used in diagnostics.
func Decode(filename string, src []byte) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, src, evalContext(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env":      envFunc,
			"coalesce": stdlib.CoalesceFunc,
			"lower":    stdlib.LowerFunc,
			"upper":    stdlib.UpperFunc,
		},
	}
}

// envFunc returns the value of an environment variable. An unset or empty
// variable yields the optional default, or "".
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	VarParam: &function.Parameter{Name: "default", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		if len(args) > 2 {
			return cty.NilVal, fmt.Errorf("env takes at most one default, got %d", len(args)-1)
		}
		if v := os.Getenv(args[0].AsString()); v != "" {
			return cty.StringVal(v), nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return cty.StringVal(""), nil
	},
})

// Validate checks the configuration. All problems are reported.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.LogLevel != "" && hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid log_level: %q", c.LogLevel))
	}

	if c.Kintone == nil {
		result = multierror.Append(result, fmt.Errorf("kintone block is required"))
	} else {
		if c.Kintone.GuestSpaceID < 0 {
			result = multierror.Append(result,
				fmt.Errorf("guest_space_id must be non-negative, got: %d", c.Kintone.GuestSpaceID))
		}
		if tc, err := c.TransportConfig(nil); err != nil {
			result = multierror.Append(result, err)
		} else if err := tc.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.Mirror != nil {
		if dc, err := c.DatabaseConfig(); err != nil {
			result = multierror.Append(result, err)
		} else if _, err := dc.Dialector(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Logger creates the root logger at the configured level.
func (c *Config) Logger(name string) hclog.Logger {
	level := hclog.Info
	if c.LogLevel != "" {
		level = hclog.LevelFromString(c.LogLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  name,
		Level: level,
	})
}

// TransportConfig converts the kintone block to a transport configuration.
// Unset values keep the transport defaults.
func (c *Config) TransportConfig(logger hclog.Logger) (*transport.Config, error) {
	if c.Kintone == nil {
		return nil, fmt.Errorf("kintone block is required")
	}
	k := c.Kintone

	tc := transport.DefaultConfig()
	tc.BaseURL = k.BaseURL
	tc.Headers = k.Headers
	tc.Logger = logger
	if k.TLSVerify != nil {
		tc.TLSVerify = k.TLSVerify
	}
	if k.MaxRetries != 0 {
		tc.MaxRetries = k.MaxRetries
	}

	var result *multierror.Error
	if d, err := parseDuration("timeout", k.Timeout, tc.Timeout); err != nil {
		result = multierror.Append(result, err)
	} else {
		tc.Timeout = d
	}
	if d, err := parseDuration("retry_delay", k.RetryDelay, tc.RetryDelay); err != nil {
		result = multierror.Append(result, err)
	} else {
		tc.RetryDelay = d
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return tc, nil
}

// ClientConfig returns the record client configuration.
func (c *Config) ClientConfig(logger hclog.Logger) record.ClientConfig {
	cc := record.ClientConfig{Logger: logger}
	if c.Kintone != nil {
		cc.GuestSpaceID = c.Kintone.GuestSpaceID
	}
	return cc
}

// NewRecordClient builds a record client over a new transport.
func (c *Config) NewRecordClient(logger hclog.Logger) (*record.Client, error) {
	tc, err := c.TransportConfig(logger)
	if err != nil {
		return nil, err
	}
	httpClient, err := transport.NewClient(tc)
	if err != nil {
		return nil, err
	}
	return record.NewClient(httpClient, c.ClientConfig(logger)), nil
}

// DatabaseConfig converts the mirror block to a database configuration.
func (c *Config) DatabaseConfig() (*database.Config, error) {
	if c.Mirror == nil {
		return nil, fmt.Errorf("mirror block is required")
	}
	m := c.Mirror

	dc := &database.Config{
		Driver:       m.Driver,
		DSN:          m.DSN,
		MaxIdleConns: m.MaxIdleConns,
		MaxOpenConns: m.MaxOpenConns,
	}

	var result *multierror.Error
	if d, err := parseDuration("conn_max_lifetime", m.ConnMaxLifetime, 0); err != nil {
		result = multierror.Append(result, err)
	} else {
		dc.ConnMaxLifetime = d
	}
	if d, err := parseDuration("conn_max_idle_time", m.ConnMaxIdleTime, 0); err != nil {
		result = multierror.Append(result, err)
	} else {
		dc.ConnMaxIdleTime = d
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return dc, nil
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
