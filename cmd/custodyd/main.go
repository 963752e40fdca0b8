package main

import (
	"fmt"
	"os"
	"path/filepath"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
	"github.com/chidioffor/crypto-hybrid-sub000/app"
	"github.com/chidioffor/crypto-hybrid-sub000/commands/server"
	"github.com/spf13/pflag"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".custodyd")
	varHome = pflag.String(flagHome, defaultHome, "directory to store files under")

	// Flags after the command belong to the command.
	pflag.CommandLine.SetInterspersed(false)
	pflag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("custodyd")
	fmt.Println("        Custody ledger node")
	fmt.Println("")
	fmt.Println("help     Print this message")
	fmt.Println("init     Initialize app options in genesis file")
	fmt.Println("start    Run the abci server")
	fmt.Println("validate Check genesis files against the application")
	fmt.Println("version  Print the app version")
	fmt.Println(`
      --home string   directory to store files under (default "$HOME/.custodyd")`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "custodyd")

	pflag.Parse()
	if pflag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := pflag.Arg(0)
	rest := pflag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(app.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(app.GenerateApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(app.Initializers(), rest)
	case "version":
		fmt.Println(custody.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
