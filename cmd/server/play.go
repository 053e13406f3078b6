package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/calvinwijaya/blackjack-be/internal/game"
	"github.com/calvinwijaya/blackjack-be/internal/service"
	"github.com/calvinwijaya/blackjack-be/internal/store"
)

type PlayCmd struct{}

func (c *PlayCmd) Run(g *Globals) error {
	logger := newLogger(os.Stderr, g)
	engine := game.NewEngine(game.NewLockedSource(g.seed()), game.WithLogger(logger.WithPrefix("engine")))
	svc := service.New(store.NewMemoryStore(), engine, nil, logger.WithPrefix("service"))
	return play(context.Background(), svc, os.Stdin, os.Stdout)
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	redCardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	messageStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("11"))
)

const playHelp = "commands: bet <n>, hit, stand, restart [continue|new], show, help, quit"

// play runs an interactive session for a single game, reading one command
// per line from in.
func play(ctx context.Context, svc *service.Service, in io.Reader, out io.Writer) error {
	r, _, err := svc.Register(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, playHelp)
	render(out, r)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var next *game.Round
		switch strings.ToLower(fields[0]) {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(out, playHelp)
			continue
		case "show":
			next, err = svc.Get(ctx, r.ID)
		case "bet":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: bet <amount>")
				continue
			}
			amount, convErr := strconv.Atoi(fields[1])
			if convErr != nil || amount < 1 {
				fmt.Fprintln(out, "bet must be a positive whole number")
				continue
			}
			next, _, err = svc.PlaceBet(ctx, r.ID, amount)
		case "hit", "take":
			next, _, err = svc.Hit(ctx, r.ID)
		case "stand", "expose":
			next, _, err = svc.Expose(ctx, r.ID)
		case "restart":
			modeArg := ""
			if len(fields) > 1 {
				modeArg = fields[1]
			}
			mode, modeErr := game.ParseRestartMode(modeArg)
			if modeErr != nil {
				fmt.Fprintln(out, "restart takes continue or new")
				continue
			}
			next, _, err = svc.Restart(ctx, r.ID, mode)
		default:
			fmt.Fprintf(out, "unknown command %q\n%s\n", fields[0], playHelp)
			continue
		}
		if err != nil {
			return err
		}

		r = next
		render(out, r)
	}
}

func render(out io.Writer, r *game.Round) {
	fmt.Fprintf(out, "%s %s (%d)\n", titleStyle.Render("Dealer:"), renderCards(r.Dealer.Cards), r.Dealer.Count)
	fmt.Fprintf(out, "%s %s (%d)\n", titleStyle.Render("You:   "), renderCards(r.Player.Cards), r.Player.Count)

	bet := "-"
	if r.CurrentBet != nil {
		bet = strconv.Itoa(*r.CurrentBet)
	}
	fmt.Fprintf(out, "wallet %d  bet %s  deck %d\n", r.Wallet, bet, r.PossibleCards.Remaining())

	if r.Message != nil {
		fmt.Fprintln(out, messageStyle.Render(*r.Message))
	}
}

func renderCards(cards []game.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		if c.Suit == game.Hearts || c.Suit == game.Diamonds {
			parts[i] = redCardStyle.Render(c.String())
		} else {
			parts[i] = c.String()
		}
	}
	return strings.Join(parts, " ")
}
