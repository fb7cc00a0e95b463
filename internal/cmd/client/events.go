package client

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
)

// followWaitMs is the long-poll window used by `events --follow`.
const followWaitMs = 10_000

// newEventsCommand constructs `events`, printing one JSON event per line.
func newEventsCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the mint/revoke audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			after, _ := cmd.Flags().GetUint64("after")
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")
			follow, _ := cmd.Flags().GetBool("follow")
			if follow && reverse {
				return errors.New("--follow cannot be combined with --reverse")
			}
			t, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			ctx := cmd.Context()
			for {
				req := identifiersvc.EventsRequest{After: after, Limit: limit, Reverse: reverse}
				if follow {
					req.WaitMs = followWaitMs
				}
				res, err := t.Events(ctx, req)
				if err != nil {
					// Interrupting --follow ends the stream normally.
					if follow && ctx.Err() != nil {
						return nil
					}
					return err
				}
				for _, e := range res.Items {
					_ = enc.Encode(e)
					after = e.Seq
				}
				if !follow {
					return nil
				}
			}
		},
	}
	cmd.Flags().Uint64("after", 0, "Exclusive sequence to start after")
	cmd.Flags().Int("limit", 0, "Page size (server default when 0)")
	cmd.Flags().Bool("reverse", false, "Newest first")
	cmd.Flags().BoolP("follow", "f", false, "Keep waiting for new events")
	addTransportFlag(cmd)
	return cmd
}
