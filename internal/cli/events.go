package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/services/game"
)

// eventPrinter renders game and session events for a terminal player
type eventPrinter struct {
	mu     sync.Mutex
	out    *Output
	latest model.GameSession
}

var _ game.PresentationSink = (*eventPrinter)(nil)

func newEventPrinter(format string, w io.Writer) *eventPrinter {
	return &eventPrinter{
		out:    NewOutput(format, w),
		latest: model.NewGameSession(),
	}
}

type eventLine struct {
	Type      model.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload,omitempty"`
}

// Publish implements game.PresentationSink
func (p *eventPrinter) Publish(e model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st, ok := e.Payload.(model.StateReplacedPayload); ok {
		p.latest = st.Session
	}

	if p.out.JSON() {
		data, err := json.Marshal(eventLine{Type: e.Type, Timestamp: e.Timestamp, Payload: e.Payload})
		if err != nil {
			return
		}
		_, _ = fmt.Fprintln(p.out.w, string(data))
		return
	}

	switch v := e.Payload.(type) {
	case model.StateReplacedPayload:
		p.printScore(v.Session)
	case model.ClusterFormedPayload:
		p.out.printf("Cluster of %d stones, credited to %s\n", len(v.StoneIDs), p.name(v.Beneficiary))
	case model.TurnChangedPayload:
		p.out.printf("%s to move\n", p.name(v.Current))
	case model.GameEndedPayload:
		p.out.printf("Game over: %s wins\n", p.name(v.Winner))
	case model.RoomCreatedPayload:
		p.out.printf("Room %s created, waiting for an opponent\n", v.Code)
	case model.GameStartedPayload:
		p.out.printf("Game started in room %s against %s, you are %s\n", v.Code, v.OpponentName, v.PlayerID)
	case model.RoomClosedPayload:
		p.out.printf("Room closed (%s)\n", v.Reason)
	case model.RelayErrorPayload:
		p.out.printf("Relay error: %s (%s)\n", v.Message, v.Code)
	default:
		switch e.Type {
		case model.EventOpponentDisconnected:
			p.out.printf("Opponent disconnected\n")
		case model.EventConnectionLost:
			p.out.printf("Connection to relay lost\n")
		}
	}
}

// State prints the full board
func (p *eventPrinter) State(s model.GameSession) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out.JSON() {
		p.out.printJSON(s)
		return
	}
	p.printScore(s)
	for _, st := range s.Stones {
		flags := ""
		if st.OnEdge {
			flags += " edge"
		}
		if st.Clustered {
			flags += " clustered"
		}
		p.out.printf("  %s  %s  (%g, %g)%s\n", st.ID, p.nameIn(s, st.Owner), st.X, st.Y, flags)
	}
}

// Error prints a rejected command
func (p *eventPrinter) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out.PrintError(err)
}

// Message prints free text
func (p *eventPrinter) Message(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out.PrintMessage(msg)
}

func (p *eventPrinter) printScore(s model.GameSession) {
	p.out.printf("Stones left: %s %d, %s %d (%d on board)\n",
		p.nameIn(s, model.PlayerHost), s.Players[model.PlayerHost].StonesLeft,
		p.nameIn(s, model.PlayerGuest), s.Players[model.PlayerGuest].StonesLeft,
		len(s.ActiveStones()))
}

func (p *eventPrinter) name(id model.PlayerID) string {
	return p.nameIn(p.latest, id)
}

func (p *eventPrinter) nameIn(s model.GameSession, id model.PlayerID) string {
	if id.Valid() && s.Players[id].Name != "" {
		return s.Players[id].Name
	}
	return id.String()
}
