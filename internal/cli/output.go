package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcoot/stonecluster/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// JSON reports whether output is machine readable
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error without aborting the command
func (o *Output) PrintError(err error) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printHealth(v)
	case response.Rules:
		o.printRules(v)
	case response.Room:
		o.printRoom(v)
	case response.RoomList:
		o.printRoomList(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printHealth(h response.Health) {
	o.printf("Status: %s\n", h.Status)
	o.printf("Connections: %d (%d seated)\n", h.Connections, h.Seated)
}

func (o *Output) printRules(r response.Rules) {
	o.printf("Stone radius: %g\n", r.StoneRadius)
	o.printf("Play area radius: %g\n", r.PlayAreaRadius)
	o.printf("Cluster distance: %g radii (x%g one edge, x%g both edges)\n",
		r.ClusterFactor, r.OneEdgeMultiplier, r.BothEdgeMultiplier)
	o.printf("Cluster scope: %s\n", r.ClusterScope)
	o.printf("Collision mode: %s\n", r.CollisionMode)
	o.printf("Stones per player: %d\n", r.StonesPerPlayer)
}

func (o *Output) printRoom(r response.Room) {
	o.printf("Room: %s\n", r.Code)
	o.printf("State: %s\n", r.State)
	o.printf("Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		status := "connected"
		if !m.Connected {
			status = "disconnected"
		}
		o.printf("  - %s (player %d) - %s\n", m.Name, m.PlayerID, status)
	}
	o.printf("Stones on board: %d\n", r.StonesOnBoard)
	for i, left := range r.StonesLeft {
		o.printf("Player %d stones left: %d\n", i, left)
	}
	switch {
	case r.GameOver && r.WinnerID != nil:
		o.printf("Winner: player %d\n", *r.WinnerID)
	case !r.GameOver:
		o.printf("Turn: player %d\n", r.CurrentPlayerID)
	}
}

func (o *Output) printRoomList(l response.RoomList) {
	if len(l.Rooms) == 0 {
		o.printf("No rooms\n")
		return
	}
	for _, r := range l.Rooms {
		names := make([]string, len(r.Members))
		for i, m := range r.Members {
			names[i] = m.Name
		}
		o.printf("%s  %-8s  %d/2  %v\n", r.Code, r.State, len(r.Members), names)
	}
}
