package main

import (
	crand "crypto/rand"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/secrethandler/secrethandler/core"
	"github.com/secrethandler/secrethandler/core/rawdb"
	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/crypto"
	"github.com/secrethandler/secrethandler/secrethandler"
	"github.com/secrethandler/secrethandler/signer"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Deploy a new secret handler owned by --key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			_, owner, err := opts.signer()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(opts.cfg.DataDir, 0o700); err != nil {
				return commandError(err, "create datadir")
			}
			db, err := rawdb.NewLevelDB(opts.cfg.ChainDir(), false)
			if err != nil {
				return commandError(err, "open ledger")
			}
			defer func() {
				err = multierr.Append(err, db.Close())
			}()

			l, err := core.Deploy(db, owner, uint256.NewInt(opts.cfg.ChainID), opts.cfg.AutoMine)
			if err != nil {
				return commandError(err, "deploy")
			}
			return writeStatus(opts.out(cmd), opts.cfg.Format, l)
		},
	}
}

func newHashCommand(opts *rootOptions) *cobra.Command {
	var (
		text bool
		salt string
	)
	cmd := &cobra.Command{
		Use:   "hash <message>",
		Short: "Compute the commitment of a message and salt",
		Long: `Compute keccak256(message || salt). The message is a 32-byte hex value,
or a string of at most 31 bytes with --text. Without --salt a random salt
is generated and printed; keep it to reveal later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := parseMessage(args[0], text)
			if err != nil {
				return err
			}
			var s types.Hash
			if salt == "" {
				if _, err := crand.Read(s[:]); err != nil {
					return commandError(err, "generate salt")
				}
			} else if s, err = parseHash("salt", salt); err != nil {
				return err
			}
			digest, err := secrethandler.HashSecret(message, s)
			if err != nil {
				return err
			}

			w := opts.out(cmd)
			if opts.cfg.Format == formatJSON {
				return printJSON(w, map[string]types.Hash{"message": message, "salt": s, "hash": digest})
			}
			fmt.Fprintf(w, "message: %s\nsalt:    %s\nhash:    %s\n", message, s, digest)
			return nil
		},
	}
	cmd.Flags().BoolVar(&text, "text", false, "treat the message as a short string")
	cmd.Flags().StringVar(&salt, "salt", "", "32-byte hex salt (random if empty)")
	return cmd
}

func newSignCommand(opts *rootOptions) *cobra.Command {
	var (
		hashed    string
		party1    string
		id        uint64
		typedData bool
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a commitment as the counterparty (--key is party2)",
		Long: `Sign the EIP-712 Secret struct a commitment by --party1 needs. The id
defaults to the ledger's next secret id and must still be current when
the commitment is submitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, party2, err := opts.signer()
			if err != nil {
				return err
			}
			h, err := parseHash("hashed secret", hashed)
			if err != nil {
				return err
			}
			p1, err := parseAddress("party1", party1)
			if err != nil {
				return err
			}
			return opts.withLedger(true, func(l *core.Ledger) error {
				if !cmd.Flags().Changed("id") {
					if id, err = l.NextSecretID(); err != nil {
						return commandError(err, "read next secret id")
					}
				}
				s := signer.Commitment(id, h, p1, party2)
				w := opts.out(cmd)
				if typedData {
					return printJSON(w, signer.NewTypedData(l.Domain(), s))
				}
				sig, err := signer.SignSecret(key, l.Domain(), s)
				if err != nil {
					return commandError(err, "sign")
				}
				// [R || S || V] with the legacy 27/28 recovery byte.
				compact := hexutil.Encode(append(append(sig.R.Bytes(), sig.S.Bytes()...), sig.V))
				if opts.cfg.Format == formatJSON {
					return printJSON(w, map[string]any{
						"id": id, "party1": p1, "party2": party2,
						"signature": compact, "r": sig.R, "s": sig.S, "v": sig.V,
					})
				}
				fmt.Fprintf(w, "id:        %d\nparty2:    %s\nsignature: %s\nr: %s\ns: %s\nv: %d\n",
					id, party2, compact, sig.R, sig.S, sig.V)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&hashed, "hashed", "", "commitment hash to sign")
	cmd.Flags().StringVar(&party1, "party1", "", "address of the committing party")
	cmd.Flags().Uint64Var(&id, "id", 0, "secret id (default: next secret id)")
	cmd.Flags().BoolVar(&typedData, "typed-data", false, "print the eth_signTypedData_v4 payload instead of signing")
	cmd.MarkFlagRequired("hashed")
	cmd.MarkFlagRequired("party1")
	return cmd
}

func newCommitCommand(opts *rootOptions) *cobra.Command {
	var (
		hashed, party2, sigHex string
		r, s                   string
		v                      uint8
	)
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit a hashed secret as party1 (--key)",
		Long: `Commit a hashed secret shared with --party2. The counterparty signature
is given either as a 65-byte --sig or as --r, --s and --v.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, from, err := opts.signer()
			if err != nil {
				return err
			}
			h, err := parseHash("hashed secret", hashed)
			if err != nil {
				return err
			}
			p2, err := parseAddress("party2", party2)
			if err != nil {
				return err
			}
			sig, err := parseSignature(sigHex, r, s, v, cmd.Flags().Changed("v"))
			if err != nil {
				return err
			}
			return opts.withLedger(false, func(l *core.Ledger) error {
				id, receipt, err := l.CommitSecret(from, h, p2, sig.R, sig.S, sig.V)
				return reportCall(opts, cmd, receipt, id, err)
			})
		},
	}
	cmd.Flags().StringVar(&hashed, "hashed", "", "commitment hash, see hash")
	cmd.Flags().StringVar(&party2, "party2", "", "address of the counterparty")
	cmd.Flags().StringVar(&sigHex, "sig", "", "65-byte counterparty signature")
	cmd.Flags().StringVar(&r, "r", "", "signature r")
	cmd.Flags().StringVar(&s, "s", "", "signature s")
	cmd.Flags().Uint8Var(&v, "v", 0, "signature v (27 or 28)")
	cmd.MarkFlagRequired("hashed")
	cmd.MarkFlagRequired("party2")
	return cmd
}

func newRevealCommand(opts *rootOptions) *cobra.Command {
	var (
		id            uint64
		message, salt string
		text          bool
	)
	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Reveal the message and salt of a secret as one of its parties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, from, err := opts.signer()
			if err != nil {
				return err
			}
			m, err := parseMessage(message, text)
			if err != nil {
				return err
			}
			sl, err := parseHash("salt", salt)
			if err != nil {
				return err
			}
			return opts.withLedger(false, func(l *core.Ledger) error {
				receipt, err := l.RevealSecret(from, m, sl, id)
				return reportCall(opts, cmd, receipt, 0, err)
			})
		},
	}
	cmd.Flags().Uint64Var(&id, "id", 0, "secret id")
	cmd.Flags().StringVar(&message, "message", "", "secret message")
	cmd.Flags().BoolVar(&text, "text", false, "treat the message as a short string")
	cmd.Flags().StringVar(&salt, "salt", "", "salt used for the commitment")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("message")
	cmd.MarkFlagRequired("salt")
	return cmd
}

func newPauseCommand(opts *rootOptions, pause bool) *cobra.Command {
	use, short := "unpause", "Resume commits and reveals (owner only)"
	if pause {
		use, short = "pause", "Suspend commits and reveals (owner only)"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, from, err := opts.signer()
			if err != nil {
				return err
			}
			return opts.withLedger(false, func(l *core.Ledger) error {
				var (
					receipt *types.Receipt
					err     error
				)
				if pause {
					receipt, err = l.Pause(from)
				} else {
					receipt, err = l.Unpause(from)
				}
				return reportCall(opts, cmd, receipt, 0, err)
			})
		},
	}
}

func newMineCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Seal the pending block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(false, func(l *core.Ledger) error {
				pending := len(l.Pending())
				n, err := l.Mine()
				if err != nil {
					return commandError(err, "mine")
				}
				if opts.cfg.Format == formatJSON {
					return printJSON(opts.out(cmd), map[string]any{"block": n, "calls": pending})
				}
				fmt.Fprintf(opts.out(cmd), "sealed block %d with %d calls\n", n, pending)
				return nil
			})
		},
	}
}

// reportCall prints the receipt of a mutating call. A rejected call still
// prints its receipt and fails with ExitReverted.
func reportCall(opts *rootOptions, cmd *cobra.Command, receipt *types.Receipt, id uint64, callErr error) error {
	if receipt == nil {
		return commandError(callErr, "call failed")
	}
	view, err := newReceiptView(receipt)
	if err != nil {
		return commandError(err, "decode receipt")
	}
	view.SecretID = id
	if err := writeReceipt(opts.out(cmd), opts.cfg.Format, view); err != nil {
		return commandError(err, "write output")
	}
	if callErr != nil {
		return &ExitError{Code: ExitReverted, Message: "call reverted", Err: callErr}
	}
	return nil
}

func parseHash(name, s string) (types.Hash, error) {
	h, err := types.ParseHash(s)
	if err != nil {
		return h, commandError(err, "invalid %s %q", name, s)
	}
	return h, nil
}

func parseAddress(name, s string) (types.Address, error) {
	a, err := types.ParseAddress(s)
	if err != nil {
		return a, commandError(err, "invalid %s %q", name, s)
	}
	return a, nil
}

func parseMessage(s string, text bool) (types.Hash, error) {
	if !text {
		return parseHash("message", s)
	}
	h, err := secrethandler.StringToBytes32(s)
	if err != nil {
		return h, commandError(err, "invalid message")
	}
	return h, nil
}

// parseSignature reads a counterparty signature from either the compact
// form or its split components. Split components are passed through
// unchanged so that the ledger applies its own checks to v.
func parseSignature(compact, r, s string, v uint8, haveV bool) (crypto.SplitSignature, error) {
	if compact != "" {
		if r != "" || s != "" || haveV {
			return crypto.SplitSignature{}, commandError(nil, "use either --sig or --r/--s/--v")
		}
		raw, err := hexutil.Decode(compact)
		if err != nil {
			return crypto.SplitSignature{}, commandError(err, "invalid signature")
		}
		sig, err := crypto.SplitCompact(raw)
		if err != nil {
			return crypto.SplitSignature{}, commandError(err, "invalid signature")
		}
		return sig, nil
	}
	if r == "" || s == "" || !haveV {
		return crypto.SplitSignature{}, commandError(nil, "missing signature: set --sig or --r, --s and --v")
	}
	rh, err := parseHash("r", r)
	if err != nil {
		return crypto.SplitSignature{}, err
	}
	sh, err := parseHash("s", s)
	if err != nil {
		return crypto.SplitSignature{}, err
	}
	return crypto.SplitSignature{R: rh, S: sh, V: v}, nil
}
