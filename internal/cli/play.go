package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/stonecluster/internal/api/response"
	"github.com/mcoot/stonecluster/internal/factory"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/bot"
	"github.com/mcoot/stonecluster/internal/services/game"
	"github.com/mcoot/stonecluster/internal/session"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game",
	}

	cmd.AddCommand(newPlayLocalCmd())
	cmd.AddCommand(newPlayHostCmd())
	cmd.AddCommand(newPlayJoinCmd())

	return cmd
}

func newPlayLocalCmd() *cobra.Command {
	var (
		players   []string
		scope     string
		collision string
		botName   string
	)

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Play hot-seat on this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(players) != model.NumPlayers {
				return fmt.Errorf("--players needs exactly %d names", model.NumPlayers)
			}

			rules := model.DefaultRuleset()
			rules.Scope = model.ClusterScope(scope)
			rules.Collision = model.CollisionMode(collision)

			peer, err := factory.NewPeer(rules, peerLogger(cmd))
			if err != nil {
				return err
			}

			local := localGame{bots: peer.NewBots()}
			if botName != "" {
				if !local.bots.HasStrategy(botName) {
					return fmt.Errorf("unknown bot %q, choose one of %s", botName, strings.Join(local.bots.Strategies(), ", "))
				}
				local.seats = map[model.PlayerID]string{model.PlayerGuest: botName}
			}

			local.printer = newEventPrinter(cfg.Output, cmd.OutOrStdout())
			local.machine = peer.NewMachine(local.printer, players...)
			if !local.printer.out.JSON() {
				local.printer.Message(helpText)
				local.printer.Message(fmt.Sprintf("%s to move", players[0]))
			}

			return local.run(cmd.InOrStdin())
		},
	}

	defaults := model.DefaultRuleset()
	cmd.Flags().StringSliceVar(&players, "players", []string{"Player 1", "Player 2"}, "Names of the two players")
	cmd.Flags().StringVar(&scope, "scope", string(defaults.Scope), "Cluster scope: any_owner, same_owner")
	cmd.Flags().StringVar(&collision, "collision", string(defaults.Collision), "Collision mode: loose, strict")
	cmd.Flags().StringVar(&botName, "bot", "", "Let a bot play the second seat: random, cautious")

	return cmd
}

// localGame is a hot-seat game with optional bot-controlled seats
type localGame struct {
	machine *game.Machine
	printer *eventPrinter
	bots    *bot.Service
	seats   map[model.PlayerID]string
}

// run feeds commands from in to the machine, always acting as the player
// whose turn it is
func (g *localGame) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		c, err := parseCommand(scanner.Text())
		if err != nil {
			g.printer.Error(err)
			continue
		}

		switch c.kind {
		case cmdPlace:
			current := g.machine.Session().CurrentPlayer
			if _, err := g.machine.ApplyPlacement(current, c.placement); err != nil {
				g.printer.Error(err)
				continue
			}
			if _, err := g.bots.ProcessBotMoves(g.machine, g.seats); err != nil {
				g.printer.Error(err)
			}
		case cmdState:
			g.printer.State(g.machine.Session())
		case cmdRematch:
			g.machine.Reset()
		case cmdHelp:
			g.printer.Message(helpText)
		case cmdQuit:
			return nil
		}
	}
	return scanner.Err()
}

func newPlayHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Host a room on the relay and wait for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playOnline(cmd, func(ctx context.Context, s *session.Session) error {
				return s.Host(ctx, cfg.Name)
			})
		},
	}
}

func newPlayJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room on the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := model.RoomCode(strings.ToUpper(args[0]))
			return playOnline(cmd, func(ctx context.Context, s *session.Session) error {
				return s.Join(ctx, code, cfg.Name)
			})
		},
	}
}

// playOnline connects to the relay with its advertised rules, runs enter to
// claim a seat, then relays typed commands until the player quits or the
// connection is lost
func playOnline(cmd *cobra.Command, enter func(context.Context, *session.Session) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var rules response.Rules
	if err := client.Get("/api/v1/rules", &rules); err != nil {
		return fmt.Errorf("fetch rules: %w", err)
	}

	logger := peerLogger(cmd)
	peer, err := factory.NewPeer(rules.ToModel(), logger)
	if err != nil {
		return err
	}

	url, err := client.WebsocketURL()
	if err != nil {
		return err
	}
	channel, err := session.DialWebsocket(ctx, session.DefaultChannelConfig(url), logger)
	if err != nil {
		return err
	}
	defer func() { _ = channel.Close() }()

	printer := newEventPrinter(cfg.Output, cmd.OutOrStdout())
	sess := peer.NewSession(channel, printer)

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	if err := enter(ctx, sess); err != nil {
		return err
	}

	lines := readLines(ctx, cmd.InOrStdin())
	for {
		select {
		case err := <-runErr:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok || handleOnline(ctx, sess, printer, line) {
				return nil
			}
		}
	}
}

// handleOnline applies one typed command and reports whether to quit
func handleOnline(ctx context.Context, sess *session.Session, printer *eventPrinter, line string) bool {
	c, err := parseCommand(line)
	if err != nil {
		printer.Error(err)
		return false
	}

	switch c.kind {
	case cmdPlace:
		err = sess.Place(ctx, c.placement)
	case cmdRematch:
		err = sess.RequestRematch(ctx)
	case cmdState:
		var st model.GameSession
		if st, err = sess.State(ctx); err == nil {
			printer.State(st)
		}
	case cmdHelp:
		printer.Message(helpText)
	case cmdQuit:
		return true
	}
	if err != nil {
		printer.Error(err)
	}
	return false
}

// readLines scans r on its own goroutine so input can be abandoned when the
// session ends
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func peerLogger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel()}))
}
