package server

import (
	"fmt"
	"io/ioutil"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/chidioffor/crypto-hybrid-sub000/app"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLoadConfig(t *testing.T) {
	home, cleanup := setupHome(t, false)
	defer cleanup()

	conf, err := LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)

	path := filepath.Join(home, ConfigFile)
	raw := "bind: tcp://0.0.0.0:26600\nmetrics: localhost:9102\n"
	require.NoError(t, ioutil.WriteFile(path, []byte(raw), 0600))
	conf, err = LoadConfig(home)
	require.NoError(t, err)
	want := Config{Bind: "tcp://0.0.0.0:26600", LogLevel: "info", Metrics: "localhost:9102"}
	assert.Equal(t, want, conf)

	conf, err = parseFlags(conf, []string{"--debug", "--metrics=", "--log_level", "error"})
	require.NoError(t, err)
	want = Config{Bind: "tcp://0.0.0.0:26600", Debug: true, LogLevel: "error"}
	assert.Equal(t, want, conf)

	require.NoError(t, ioutil.WriteFile(path, []byte("bnid: typo\n"), 0600))
	_, err = LoadConfig(home)
	assert.True(t, errors.ErrInput.Is(err), "got %v", err)
}

func TestMetricsServer(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := app.GenerateApp("", log.NewNopLogger(), false, registry)
	require.NoError(t, err)

	srv := metricsServer("unused", registry)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestStartStandAlone(t *testing.T) {
	home, cleanup := setupHome(t, false)
	defer cleanup()

	gen := func(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
		if !debug || reg != nil {
			return nil, errors.Wrap(errors.ErrInput, "unexpected settings")
		}
		return app.GenerateApp("", logger, debug, reg)
	}

	// set up app and start up
	args := []string{"--bind", "tcp://localhost:11122", "--debug"}
	runStart := func() error { return StartCmd(gen, log.NewNopLogger(), home, args) }
	err := runOrTimeout(runStart, 2*time.Second)
	require.NoError(t, err)

	err = StartCmd(gen, log.NewNopLogger(), home, []string{"--log_level", "loud"})
	assert.True(t, errors.ErrInput.Is(err), "got %v", err)
}

func runOrTimeout(cmd func() error, timeout time.Duration) error {
	done := make(chan error, 2)
	go func(out chan<- error) {
		// we assume cmd should block (RunForever)
		err := cmd()
		if err != nil {
			out <- err
		}
		out <- fmt.Errorf("start died for unknown reasons")
	}(done)

	timer := time.NewTimer(timeout)
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return nil
	}
}
