package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player name commands",
	}

	cmd.AddCommand(newPlayerUseCmd())
	cmd.AddCommand(newPlayerMeCmd())

	return cmd
}

func newPlayerUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Save the player name used by later commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("player name must not be empty")
			}

			if err := cfg.SavePlayer(name); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(PlayerResult{Player: name})
			return nil
		},
	}
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current player name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Player == "" {
				return fmt.Errorf("no player set; use --player, PADDLE_PLAYER or 'paddle player use'")
			}

			out := NewOutput(cfg.Output)
			out.Print(PlayerResult{Player: cfg.Player})
			return nil
		},
	}
}
