package client

import (
	"github.com/spf13/cobra"
)

// NewCommands returns the identifier commands so an embedding binary can
// attach them to its own root.
func NewCommands(baseURL BaseURLFunc) []*cobra.Command {
	return []*cobra.Command{
		newGenerateCommand(),
		newInspectCommand(baseURL),
		newMintCommand(baseURL),
		newListCommand(baseURL),
		newRevokeCommand(baseURL),
		newKindsCommand(baseURL),
		newEventsCommand(baseURL),
	}
}

// NewRoot constructs a root Cobra command for the cuidd client.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "cuidd",
		Short: "cuidd client commands",
	}
	root.AddCommand(NewCommands(baseURL)...)
	return root
}
