package main

import (
	"crypto/ecdsa"
	"errors"
	"io"
	"os"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/secrethandler/secrethandler/core"
	"github.com/secrethandler/secrethandler/core/rawdb"
	"github.com/secrethandler/secrethandler/core/state"
	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
	"github.com/secrethandler/secrethandler/log"
	"github.com/secrethandler/secrethandler/metrics"
)

// rootOptions holds the global flags and the configuration resolved from
// them before a subcommand runs.
type rootOptions struct {
	configFile string
	envFile    string
	flags      Config

	cfg    Config
	getenv func(string) string

	// chainIDSet records that the chain id was given explicitly rather
	// than defaulted.
	chainIDSet bool
}

// newRootCommand builds the command tree. getenv supplies environment
// variables.
func newRootCommand(getenv func(string) string) *cobra.Command {
	opts := &rootOptions{flags: DefaultConfig(), getenv: getenv}

	cmd := &cobra.Command{
		Use:   "secrethandler",
		Short: "Two-party commit-reveal secrets on a local ledger",
		Long: `secrethandler keeps commitments to secrets shared by two parties.

One party commits to keccak256(message || salt) together with the other
party's EIP-712 signature; later either party reveals the message and salt,
which the ledger checks against the commitment before discarding it.`,
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			snap := metrics.DefaultRegistry.Snapshot()
			ctx := make([]any, 0, 2*len(snap))
			for _, name := range metrics.DefaultRegistry.Names() {
				ctx = append(ctx, name, snap[name])
			}
			log.Debug("Metrics", ctx...)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "YAML config file")
	pf.StringVar(&opts.envFile, "env-file", "", "dotenv file (default .env if present)")
	pf.StringVar(&opts.flags.DataDir, "datadir", opts.flags.DataDir, "data directory")
	pf.Uint64Var(&opts.flags.ChainID, "chain-id", opts.flags.ChainID, "chain id bound into signatures at init; other commands reject a different value")
	pf.IntVar(&opts.flags.Verbosity, "verbosity", opts.flags.Verbosity, "log level 0-5")
	pf.BoolVar(&opts.flags.AutoMine, "automine", opts.flags.AutoMine, "seal a block after every call")
	pf.StringVar(&opts.flags.Format, "format", opts.flags.Format, "output format (text|json)")
	pf.StringVar(&opts.flags.SignerKey, "key", "", "hex private key of the acting account")

	cmd.AddCommand(
		newInitCommand(opts),
		newHashCommand(opts),
		newSignCommand(opts),
		newCommitCommand(opts),
		newRevealCommand(opts),
		newPauseCommand(opts, true),
		newPauseCommand(opts, false),
		newSecretCommand(opts),
		newStatusCommand(opts),
		newLogsCommand(opts),
		newMineCommand(opts),
	)
	return cmd
}

// resolve merges defaults, config file, environment and changed flags,
// validates the result and installs the logger.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg := DefaultConfig()
	chainIDSet := false
	if o.configFile != "" {
		if err := LoadConfigFile(o.configFile, &cfg); err != nil {
			return commandError(err, "load config")
		}
		chainIDSet = cfg.ChainID != DefaultConfig().ChainID
	}
	getenv, err := loadEnv(o.getenv, o.envFile)
	if err != nil {
		return commandError(err, "load environment")
	}
	if err := ApplyEnv(&cfg, getenv); err != nil {
		return commandError(err, "apply environment")
	}
	if getenv(envChainID) != "" {
		chainIDSet = true
	}

	flags := cmd.Flags()
	if flags.Changed("datadir") {
		cfg.DataDir = o.flags.DataDir
	}
	if flags.Changed("chain-id") {
		cfg.ChainID = o.flags.ChainID
		chainIDSet = true
	}
	if flags.Changed("verbosity") {
		cfg.Verbosity = o.flags.Verbosity
	}
	if flags.Changed("automine") {
		cfg.AutoMine = o.flags.AutoMine
	}
	if flags.Changed("format") {
		cfg.Format = o.flags.Format
	}
	if flags.Changed("key") {
		cfg.SignerKey = o.flags.SignerKey
	}
	if err := cfg.Validate(); err != nil {
		return commandError(err, "invalid configuration")
	}
	o.cfg = cfg
	o.chainIDSet = chainIDSet

	log.SetDefault(log.NewWriter(cmd.ErrOrStderr(), log.VerbosityToLevel(cfg.Verbosity), false))
	log.Debug("Resolved configuration", "datadir", cfg.DataDir, "chainId", cfg.ChainID, "automine", cfg.AutoMine)
	return nil
}

// signer returns the acting key and its address.
func (o *rootOptions) signer() (*ecdsa.PrivateKey, types.Address, error) {
	if o.cfg.SignerKey == "" {
		return nil, types.Address{}, commandError(nil, "no account key: set --key or %s", envSignerKey)
	}
	key, err := crypto.HexToKey(o.cfg.SignerKey)
	if err != nil {
		return nil, types.Address{}, commandError(err, "parse account key")
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}

// withLedger opens the ledger of the data directory for the duration of fn.
func (o *rootOptions) withLedger(readonly bool, fn func(*core.Ledger) error) (err error) {
	if _, statErr := os.Stat(o.cfg.ChainDir()); statErr != nil {
		return commandError(statErr, "no ledger in %s, run init first", o.cfg.DataDir)
	}
	db, err := rawdb.NewLevelDB(o.cfg.ChainDir(), readonly)
	if err != nil {
		return commandError(err, "open ledger")
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	l, err := core.Open(db, o.cfg.AutoMine)
	if errors.Is(err, state.ErrNotDeployed) {
		return commandError(err, "no deployment in %s, run init first", o.cfg.DataDir)
	}
	if err != nil {
		return commandError(err, "load ledger")
	}
	if deployed := l.Domain().ChainID; o.chainIDSet && !deployed.Eq(uint256.NewInt(o.cfg.ChainID)) {
		return commandError(nil, "chain id %d does not match the deployment's chain id %s", o.cfg.ChainID, deployed.Dec())
	}
	return fn(l)
}

func (o *rootOptions) out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
