package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	zlog "github.com/lk2023060901/garden-serde/pkg/log"
	"github.com/lk2023060901/garden-serde/pkg/metrics"
	"github.com/lk2023060901/garden-serde/pkg/serde/mapper"
)

// ConfigPathEnv names the environment variable holding the config file path.
const ConfigPathEnv = "SERDE_CONFIG_FILE_PATH"

// Application is the runtime container of the serde tools.
// It owns configuration, the process logger, the metrics registry and the
// configured Mapper.
type Application struct {
	cfg    *mapper.Config
	mapper *mapper.Mapper
	logger *zlog.MLogger
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Init loads configuration and builds the dependencies. The config file is
// resolved with the following priority:
//  1. Argument: configPath
//  2. Env: SERDE_CONFIG_FILE_PATH
//  3. None: built-in defaults plus SERDE_* overrides
func (a *Application) Init(configPath string) error {
	cfg, err := a.loadConfig(configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}

	metrics.Register(prometheus.NewRegistry())

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, mapper.WithLogger(a.logger))
	a.mapper = mapper.New(opts...)

	a.logger.Debug("application initialized",
		zap.String("defaultContentType", cfg.Mapper.DefaultContentType),
		zap.String("inclusion", cfg.Mapper.Inclusion),
		zap.Bool("failOnUnknownFields", cfg.Mapper.FailOnUnknownFields))
	return nil
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *mapper.Config {
	return a.cfg
}

// Mapper returns the configured mapper, falling back to mapper.Default before
// Init.
func (a *Application) Mapper() *mapper.Mapper {
	if a.mapper == nil {
		return mapper.Default()
	}
	return a.mapper
}

// Logger returns the application logger, falling back to the global logger.
func (a *Application) Logger() *zlog.MLogger {
	if a.logger == nil {
		return zlog.NewMLogger(zlog.L())
	}
	return a.logger
}

// Gatherer exposes the codec and document metrics of the process.
func (a *Application) Gatherer() prometheus.Gatherer {
	return metrics.GetGatherer()
}

// Close flushes buffered log entries.
func (a *Application) Close() error {
	return zlog.Sync()
}

// loadConfig resolves the config file path and loads it via the mapper config.
func (a *Application) loadConfig(configPath string) (*mapper.Config, error) {
	if configPath == "" {
		configPath = getenvDefault(ConfigPathEnv, "")
	}
	if configPath == "" {
		return mapper.DefaultConfig()
	}
	cfg, err := mapper.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", configPath)
	}
	return cfg, nil
}

// initLogging replaces the process-wide logger with one built from the "log"
// section.
func (a *Application) initLogging() error {
	logger, props, err := zlog.InitLogger(&a.cfg.Log)
	if err != nil {
		return errors.Wrap(err, "init global logger")
	}
	zlog.ReplaceGlobals(logger, props)
	a.logger = zlog.NewMLogger(logger).With(zlog.FieldModule("serdectl"))
	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}
