// Command secrethandler runs a two-party commit-reveal secret handler on a
// local ledger stored in a data directory.
//
// Usage:
//
//	secrethandler [global flags] <command> [flags]
//
// Commands:
//
//	init      deploy a new handler owned by --key
//	hash      compute keccak256(message || salt)
//	sign      sign a commitment as the counterparty
//	commit    commit a hashed secret with the counterparty signature
//	reveal    reveal a secret as one of its parties
//	pause     suspend commits and reveals (owner)
//	unpause   resume commits and reveals (owner)
//	secret    show a stored record
//	status    show the deployment state
//	logs      list events
//	mine      seal the pending block
//
// Global flags:
//
//	--config     YAML config file (datadir, chainId, verbosity, autoMine, format)
//	--env-file   dotenv file (default .env if present)
//	--datadir    data directory (default: ~/.secrethandler)
//	--chain-id   chain id bound into signatures (default: 31337)
//	--verbosity  log level 0-5 (default: 3)
//	--automine   seal a block after every call (default: true)
//	--format     output format text|json (default: text)
//	--key        hex private key of the acting account
//
// Exit status is 0 on success, 1 when the ledger rejects the call and 2 on
// any other failure.
package main

import (
	"fmt"
	"os"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cmd := newRootCommand(os.Getenv)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return exitCode(err)
}
