package client

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	identifiersvc "github.com/rzbill/cuidd/internal/services/identifiers"
	"github.com/rzbill/cuidd/pkg/cuid"
)

// newGenerateCommand constructs `generate`, which mints locally without a
// server or ledger.
func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate identifiers locally (not recorded)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("count")
			if n < 1 {
				return errors.Errorf("--count must be at least 1, got %d", n)
			}
			gen := cuid.FromContext(cmd.Context())
			for i := 0; i < n; i++ {
				fmt.Fprintln(cmd.OutOrStdout(), gen.Next())
			}
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 1, "Number of identifiers")
	return cmd
}

type localInspection struct {
	ID    string     `json:"id"`
	Parts cuid.Parts `json:"parts"`
	Time  string     `json:"time"`
}

// newInspectCommand constructs `inspect <id>`. With --remote the ledger
// record is fetched from the server as well.
func newInspectCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Decode an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, _ := cmd.Flags().GetBool("remote")
			if !remote {
				p, err := cuid.Parse(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), localInspection{
					ID:    args[0],
					Parts: p,
					Time:  p.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
				})
			}
			t, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			res, err := t.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().Bool("remote", false, "Look the identifier up in the server ledger")
	addTransportFlag(cmd)
	return cmd
}

// newMintCommand constructs `mint`.
func newMintCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint and record identifiers for a kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			n, _ := cmd.Flags().GetInt("count")
			label, _ := cmd.Flags().GetString("label")
			quiet, _ := cmd.Flags().GetBool("quiet")
			t, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			recs, err := t.Mint(cmd.Context(), identifiersvc.MintRequest{Kind: kind, Count: n, Label: label})
			if err != nil {
				return err
			}
			if quiet {
				for _, r := range recs {
					fmt.Fprintln(cmd.OutOrStdout(), r.ID)
				}
				return nil
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().String("kind", "", "Entity kind (e.g. todo, note, profile)")
	cmd.Flags().IntP("count", "n", 1, "Number of identifiers")
	cmd.Flags().String("label", "", "Free-form label stored with each record")
	cmd.Flags().BoolP("quiet", "q", false, "Print only the identifiers")
	_ = cmd.MarkFlagRequired("kind")
	addTransportFlag(cmd)
	return cmd
}

// newListCommand constructs `list`.
func newListCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			after, _ := cmd.Flags().GetString("after")
			limit, _ := cmd.Flags().GetInt("limit")
			reverse, _ := cmd.Flags().GetBool("reverse")
			filter, _ := cmd.Flags().GetString("filter")
			t, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			res, err := t.List(cmd.Context(), identifiersvc.ListRequest{
				Kind:    kind,
				After:   after,
				Limit:   limit,
				Reverse: reverse,
				Filter:  filter,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().String("kind", "", "Entity kind (empty lists every kind)")
	cmd.Flags().String("after", "", "Exclusive cursor (an identifier)")
	cmd.Flags().Int("limit", 0, "Page size (server default when 0)")
	cmd.Flags().Bool("reverse", false, "Newest first")
	cmd.Flags().String("filter", "", "CEL filter, e.g. 'label == \"x\" && counter > 0'")
	addTransportFlag(cmd)
	return cmd
}

// newRevokeCommand constructs `revoke <id>`.
func newRevokeCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Remove an identifier from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			if err := t.Revoke(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "revoked:", args[0])
			return nil
		},
	}
	addTransportFlag(cmd)
	return cmd
}

// newKindsCommand constructs `kinds`.
func newKindsCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "Show per-kind issue counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := getTransport(cmd, baseURL)
			if err != nil {
				return err
			}
			metas, err := t.Kinds(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range metas {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %d\n", m.Name, m.Issued)
			}
			return nil
		},
	}
	addTransportFlag(cmd)
	return cmd
}
