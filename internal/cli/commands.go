package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcoot/stonecluster/internal/model"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdPlace
	cmdState
	cmdRematch
	cmdHelp
	cmdQuit
)

// command is one line typed by the player
type command struct {
	kind      commandKind
	placement model.Placement
}

var errUnknownCommand = errors.New("unknown command, type help for a list")

const helpText = `Commands:
  place <x> <y> [edge]  place a stone, optionally on its edge
  state                 show every stone on the board
  rematch               start a new game
  help                  show this message
  quit                  leave`

// parseCommand parses a line of player input. Blank lines parse to cmdNone.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{kind: cmdNone}, nil
	}

	switch fields[0] {
	case "place", "p":
		return parsePlace(fields[1:])
	case "state", "s":
		return command{kind: cmdState}, nil
	case "rematch", "r":
		return command{kind: cmdRematch}, nil
	case "help", "h", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	}
	return command{}, errUnknownCommand
}

func parsePlace(args []string) (command, error) {
	if len(args) < 2 || len(args) > 3 {
		return command{}, errors.New("usage: place <x> <y> [edge]")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return command{}, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return command{}, fmt.Errorf("invalid y %q", args[1])
	}
	p := model.Placement{X: x, Y: y}
	if len(args) == 3 {
		if args[2] != "edge" {
			return command{}, fmt.Errorf("unexpected %q, expected edge", args[2])
		}
		p.OnEdge = true
	}
	return command{kind: cmdPlace, placement: p}, nil
}
