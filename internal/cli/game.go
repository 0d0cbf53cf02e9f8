package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameQuitCmd())
	cmd.AddCommand(newGameMovesCmd())
	cmd.AddCommand(newGamePlayCmd())
	cmd.AddCommand(newGameEndCmd())

	return cmd
}

// gamePath builds the API path for a game id typed by the user
func gamePath(id string, sub ...string) string {
	return strings.Join(append([]string{"/api/v1/games", url.PathEscape(id)}, sub...), "/")
}

func newGameCreateCmd() *cobra.Command {
	var maxPlayers, goal int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game and take the first seat",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{}
			if maxPlayers > 0 {
				req["max_players"] = maxPlayers
			}
			if goal > 0 {
				req["goal"] = goal
			}

			var result Game
			if err := client.Post(cmd.Context(), "/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Number of seats (server default if unset)")
	cmd.Flags().IntVar(&goal, "goal", 0, "Number of rounds and paddles (server default if unset)")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your active games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList
			if err := client.Get(cmd.Context(), "/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Get(cmd.Context(), gamePath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Join a game that is still registering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post(cmd.Context(), gamePath(args[0], "join"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameQuitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quit <id>",
		Short: "Leave a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), gamePath(args[0], "quit"), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Left game %s", args[0]))
			return nil
		},
	}
}

func newGameMovesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moves <id>",
		Short: "Show the paddles you can still play",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ValidMoves
			if err := client.Get(cmd.Context(), gamePath(args[0], "moves"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGamePlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <id> <paddle>",
		Short: "Play a paddle in the current round",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paddle, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid paddle: %w", err)
			}

			req := map[string]int{"paddle": paddle}
			var result Game
			if err := client.Post(cmd.Context(), gamePath(args[0], "moves"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <id>",
		Short: "End a game in progress immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post(cmd.Context(), gamePath(args[0], "end"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
