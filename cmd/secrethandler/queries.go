package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/spf13/cobra"

	"github.com/secrethandler/secrethandler/core"
	"github.com/secrethandler/secrethandler/core/types"
	"github.com/secrethandler/secrethandler/metrics"
	"github.com/secrethandler/secrethandler/secrethandler"
)

func newSecretCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "secret <id>",
		Short: "Show the record stored under a secret id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := math.ParseUint64(args[0])
			if !ok {
				return commandError(nil, "invalid secret id %q", args[0])
			}
			return opts.withLedger(true, func(l *core.Ledger) error {
				rec, err := l.Secret(id)
				if err != nil {
					return commandError(err, "read secret")
				}
				view := newSecretView(rec)
				w := opts.out(cmd)
				if opts.cfg.Format == formatJSON {
					return printJSON(w, view)
				}
				if view.Empty {
					fmt.Fprintf(w, "secret %d: empty\n", id)
					return nil
				}
				fmt.Fprintf(w, "id:          %d\nmessage:     %s\nblockNumber: %d\nparty1:      %s\nparty2:      %s\n",
					view.ID, view.Message, view.BlockNumber, view.Party1, view.Party2)
				return nil
			})
		},
	}
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the deployment and ledger state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withLedger(true, func(l *core.Ledger) error {
				return writeStatus(opts.out(cmd), opts.cfg.Format, l)
			})
		},
	}
}

type statusView struct {
	Contract     types.Address `json:"contract"`
	Owner        types.Address `json:"owner"`
	ChainID      string        `json:"chainId"`
	Separator    types.Hash    `json:"domainSeparator"`
	NextSecretID uint64        `json:"nextSecretId"`
	Paused       bool          `json:"paused"`
	Head         uint64        `json:"head"`
	Pending      int           `json:"pendingCalls"`
	AutoMine     bool          `json:"autoMine"`

	// Metrics are counted since the process started; open secrets are
	// loaded from the ledger.
	Metrics map[string]int64 `json:"metrics"`
}

func writeStatus(w io.Writer, format string, l *core.Ledger) error {
	next, err := l.NextSecretID()
	if err != nil {
		return commandError(err, "read next secret id")
	}
	paused, err := l.Paused()
	if err != nil {
		return commandError(err, "read pause flag")
	}
	d := l.Domain()
	v := statusView{
		Contract:     d.VerifyingContract,
		Owner:        l.Owner(),
		ChainID:      d.ChainID.Dec(),
		Separator:    d.Separator(),
		NextSecretID: next,
		Paused:       paused,
		Head:         l.Head(),
		Pending:      len(l.Pending()),
		AutoMine:     l.AutoMine(),
		Metrics:      metrics.DefaultRegistry.Snapshot(),
	}
	if format == formatJSON {
		return printJSON(w, v)
	}
	fmt.Fprintf(w, "contract:     %s\nowner:        %s\nchain id:     %s\nseparator:    %s\nnext id:      %d\npaused:       %v\nhead:         %d\npending:      %d\nautomine:     %v\n",
		v.Contract, v.Owner, v.ChainID, v.Separator, v.NextSecretID, v.Paused, v.Head, v.Pending, v.AutoMine)
	fmt.Fprintln(w, "metrics:")
	for _, name := range metrics.DefaultRegistry.Names() {
		fmt.Fprintf(w, "  %-22s %d\n", name, v.Metrics[name])
	}
	return nil
}

func newLogsCommand(opts *rootOptions) *cobra.Command {
	var (
		from, to uint64
		events   []string
		secretID string
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List events of sealed blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &types.LogFilter{FromBlock: from, ToBlock: to}
			if len(events) > 0 || secretID != "" {
				filter.Topics = make([][]types.Hash, 1, 2)
			}
			for _, name := range events {
				if _, ok := secrethandler.EventsABI.Events[name]; !ok {
					return commandError(nil, "unknown event %q", name)
				}
				filter.Topics[0] = append(filter.Topics[0], secrethandler.EventTopic(name))
			}
			if secretID != "" {
				id, ok := math.ParseUint64(secretID)
				if !ok {
					return commandError(nil, "invalid secret id %q", secretID)
				}
				var topic types.Hash
				topic.SetBytes(math.U256Bytes(new(big.Int).SetUint64(id)))
				filter.Topics = append(filter.Topics, []types.Hash{topic})
			}

			return opts.withLedger(true, func(l *core.Ledger) error {
				logs, err := l.Logs(filter)
				if err != nil {
					return commandError(err, "read logs")
				}
				views := make([]eventView, 0, len(logs))
				for _, lg := range logs {
					v, err := newEventView(lg)
					if err != nil {
						return commandError(err, "decode log")
					}
					views = append(views, v)
				}
				w := opts.out(cmd)
				if opts.cfg.Format == formatJSON {
					return printJSON(w, views)
				}
				for _, v := range views {
					fmt.Fprintln(w, v.String())
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 0, "first block")
	cmd.Flags().Uint64Var(&to, "to", 0, "last block (default: head)")
	cmd.Flags().StringSliceVar(&events, "event", nil, "event names to include")
	cmd.Flags().StringVar(&secretID, "secret-id", "", "only events of this secret id")
	return cmd
}
