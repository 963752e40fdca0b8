package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/chidioffor/crypto-hybrid-sub000/app"
	"github.com/chidioffor/crypto-hybrid-sub000/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

// setupHome creates a homedir to run inside. When withGenesis is set the
// tendermint genesis from testdata is copied there, as `tendermint init`
// would have created it.
func setupHome(t *testing.T, withGenesis bool) (string, func()) {
	t.Helper()
	home, err := ioutil.TempDir("", "custody-cmd")
	require.NoError(t, err)
	if withGenesis {
		require.NoError(t, os.Mkdir(filepath.Join(home, "config"), 0755))
		raw, err := ioutil.ReadFile(filepath.Join("testdata", "genesis.json"))
		require.NoError(t, err)
		require.NoError(t, ioutil.WriteFile(GenesisPath(home), raw, 0600))
	}
	return home, func() { os.RemoveAll(home) }
}

func readDoc(t *testing.T, home string) GenesisDoc {
	t.Helper()
	bz, err := ioutil.ReadFile(GenesisPath(home))
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(bz, &doc))
	return doc
}

func TestInitExtendsTendermintGenesis(t *testing.T) {
	home, cleanup := setupHome(t, true)
	defer cleanup()

	logger := log.NewNopLogger()
	require.NoError(t, InitCmd(app.GenInitOptions, logger, home, []string{"ETH"}))

	// keep old values, and add our values
	doc := readDoc(t, home)
	assert.EqualValues(t, []byte(`"test-chain-LgVOZ0"`), doc["chain_id"])
	assert.NotEmpty(t, doc["validators"])
	assert.NotEmpty(t, doc["consensus_params"])
	assert.Contains(t, string(doc["app_state"]), "123456789 ETH")

	// a generated genesis file must pass validation
	require.NoError(t, ValidateGenesis(app.Initializers(), []string{GenesisPath(home)}))

	// defaults are written next to it
	conf, err := LoadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)

	err = InitCmd(app.GenInitOptions, logger, home, []string{"ETH"})
	assert.True(t, errors.ErrState.Is(err), "got %v", err)
	require.NoError(t, InitCmd(app.GenInitOptions, logger, home, []string{"--force", "BTC"}))
	assert.Contains(t, string(readDoc(t, home)["app_state"]), "123456789 BTC")
}

func TestInitCreatesGenesis(t *testing.T) {
	home, cleanup := setupHome(t, false)
	defer cleanup()

	addr, _, err := app.GenerateCoinKey()
	require.NoError(t, err)

	args := []string{"--chain-id", "my-chain-12", "GOV", addr.String()}
	require.NoError(t, InitCmd(app.GenInitOptions, log.NewNopLogger(), home, args))

	doc := readDoc(t, home)
	assert.EqualValues(t, []byte(`"my-chain-12"`), doc["chain_id"])
	assert.NotEmpty(t, doc["genesis_time"])
	assert.Contains(t, string(doc["app_state"]), addr.String())
	require.NoError(t, ValidateGenesis(app.Initializers(), []string{GenesisPath(home)}))
}

func TestInitRejectsBadTicker(t *testing.T) {
	home, cleanup := setupHome(t, false)
	defer cleanup()

	err := InitCmd(app.GenInitOptions, log.NewNopLogger(), home, []string{"not a ticker"})
	assert.True(t, errors.ErrCurrency.Is(err), "got %v", err)
	_, err = os.Stat(GenesisPath(home))
	assert.True(t, os.IsNotExist(err))
}

func TestValidateGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "custody-validate")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))
		return path
	}

	cases := map[string]struct {
		path    string
		wantErr *errors.Error
	}{
		"missing file": {
			path:    filepath.Join(dir, "nope.json"),
			wantErr: errors.ErrInput,
		},
		"not json": {
			path:    write("broken.json", `{"chain_id": `),
			wantErr: errors.ErrInput,
		},
		"bad chain id": {
			path:    write("chain.json", `{"chain_id": "x", "app_state": {}}`),
			wantErr: errors.ErrInput,
		},
		"missing module configuration": {
			path:    write("noconf.json", `{"chain_id": "test-chain-1", "app_state": {}}`),
			wantErr: errors.ErrNotFound,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := ValidateGenesis(app.Initializers(), []string{tc.path})
			assert.True(t, tc.wantErr.Is(err), "got %v", err)
		})
	}

	err = ValidateGenesis(app.Initializers(), nil)
	assert.True(t, errors.ErrInput.Is(err), "got %v", err)
}
