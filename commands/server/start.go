package server

import (
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	yaml "gopkg.in/yaml.v2"
)

const (
	flagBind     = "bind"
	flagDebug    = "debug"
	flagMetrics  = "metrics"
	flagLogLevel = "log_level"

	// ConfigFile is looked up in the home directory.
	ConfigFile = "config.yaml"
)

// Config holds the server settings. Values are read from ConfigFile and
// can be overwritten with flags.
type Config struct {
	Bind  string `yaml:"bind"`
	Debug bool   `yaml:"debug"`
	// LogLevel is one of debug, info, error or none.
	LogLevel string `yaml:"log_level"`
	// Metrics is the address of the prometheus endpoint. Empty disables
	// metrics collection.
	Metrics string `yaml:"metrics"`
}

// DefaultConfig is used when the home directory has no ConfigFile.
func DefaultConfig() Config {
	return Config{Bind: "tcp://localhost:26658", LogLevel: "info"}
}

// LoadConfig reads ConfigFile from the home directory. A missing file is
// not an error.
func LoadConfig(home string) (Config, error) {
	conf := DefaultConfig()
	raw, err := ioutil.ReadFile(filepath.Join(home, ConfigFile))
	switch {
	case os.IsNotExist(err):
		return conf, nil
	case err != nil:
		return conf, errors.Wrapf(errors.ErrInput, "read config: %s", err)
	}
	if err := yaml.UnmarshalStrict(raw, &conf); err != nil {
		return conf, errors.Wrapf(errors.ErrInput, "parse config: %s", err)
	}
	return conf, nil
}

func parseFlags(conf Config, args []string) (Config, error) {
	fs := pflag.NewFlagSet("start", pflag.ContinueOnError)
	fs.StringVar(&conf.Bind, flagBind, conf.Bind, "address server listens on")
	fs.BoolVar(&conf.Debug, flagDebug, conf.Debug, "call stack returned on error")
	fs.StringVar(&conf.LogLevel, flagLogLevel, conf.LogLevel, "log level: debug, info, error or none")
	fs.StringVar(&conf.Metrics, flagMetrics, conf.Metrics, "address of the prometheus endpoint, empty disables it")
	err := fs.Parse(args)
	return conf, err
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags.
// Registerer is nil when metrics are disabled.
type AppGenerator func(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error)

// StartCmd initializes the application and serves it over the ABCI
// socket until the process is signalled.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	conf, err := LoadConfig(home)
	if err != nil {
		return err
	}
	conf, err = parseFlags(conf, args)
	if err != nil {
		return err
	}
	level, err := log.AllowLevel(conf.LogLevel)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "log level: %s", err)
	}
	logger = log.NewFilter(logger, level)

	var reg prometheus.Registerer
	var metrics *http.Server
	if conf.Metrics != "" {
		registry := prometheus.NewRegistry()
		reg = registry
		metrics = metricsServer(conf.Metrics, registry)
		go func() {
			logger.Info("Serving metrics", "bind", conf.Metrics)
			if err := metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	// Generate the app in the proper dir
	app, err := gen(home, logger, conf.Debug, reg)
	if err != nil {
		return err
	}

	logger.Info("Starting ABCI app", "bind", conf.Bind)

	svr, err := server.NewServer(conf.Bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "creating listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "start abci server")
	}

	// TrapSignal exits the process after cleanup, until then serve forever.
	cmn.TrapSignal(logger, func() {
		svr.Stop()
		if metrics != nil {
			metrics.Close()
		}
	})
	select {}
}

func metricsServer(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return &http.Server{Addr: addr, Handler: mux}
}
