package protocol

import "github.com/mcoot/stonecluster/internal/model"

// MessageType discriminates envelope payloads
type MessageType string

const (
	// Client to relay
	TypeCreateRoom     MessageType = "create_room"
	TypeJoinRoom       MessageType = "join_room"
	TypeRejoinRoom     MessageType = "rejoin_room"
	TypeRequestRematch MessageType = "request_rematch"

	// Client to relay, forwarded to the other client
	TypePlaceStone      MessageType = "place_stone"
	TypeClusterOccurred MessageType = "cluster_occurred"
	TypeGameOver        MessageType = "game_over"

	// Relay to client
	TypeRoomCreated          MessageType = "room_created"
	TypeGameStart            MessageType = "game_start"
	TypeRematch              MessageType = "rematch"
	TypeOpponentDisconnected MessageType = "opponent_disconnected"
	TypeRoomClosed           MessageType = "room_closed"
	TypeError                MessageType = "error"
)

// CreateRoom asks the relay for a new room with the sender as host
type CreateRoom struct {
	Name string `json:"name"`
}

// JoinRoom asks to take the guest seat of an existing room
type JoinRoom struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

// RejoinRoom resumes a seat after the transport dropped
type RejoinRoom struct {
	RoomID    string `json:"room_id"`
	PlayerID  int    `json:"player_id"`
	SeatToken string `json:"seat_token"`
}

// RoomCreated confirms room allocation to the host
type RoomCreated struct {
	RoomID    string `json:"room_id"`
	PlayerID  int    `json:"player_id"`
	SeatToken string `json:"seat_token"`
}

// GameStart is sent to both members once the guest joins
type GameStart struct {
	RoomID       string    `json:"room_id"`
	PlayerID     int       `json:"player_id"`
	SeatToken    string    `json:"seat_token,omitempty"`
	OpponentName string    `json:"opponent_name"`
	State        GameState `json:"state"`
}

// PlaceStone carries a placement together with the state the sender computed
type PlaceStone struct {
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	OnEdge         bool      `json:"on_edge"`
	ActingPlayerID int       `json:"acting_player_id"`
	State          GameState `json:"state"`
}

// ClusterOccurred replays a cluster for presentation on the receiver
type ClusterOccurred struct {
	StoneIDs            []string `json:"stone_ids"`
	BeneficiaryPlayerID int      `json:"beneficiary_player_id"`
}

// GameOver announces the winner
type GameOver struct {
	WinnerID int `json:"winner_id"`
}

// Rematch carries the fresh state after a rematch request
type Rematch struct {
	State GameState `json:"state"`
}

// RoomClosed tells a still-connected member the relay evicted its room
type RoomClosed struct {
	Reason string `json:"reason"`
}

// Empty is the payload of messages that carry no data
type Empty struct{}

// Error reports a rejected request
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Player is the wire form of model.Player
type Player struct {
	ID         int    `json:"id"`
	StonesLeft int    `json:"stones_left"`
	Name       string `json:"name"`
}

// Stone is the wire form of model.Stone
type Stone struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Owner     int     `json:"owner_player_id"`
	Clustered bool    `json:"clustered"`
	OnEdge    bool    `json:"on_edge"`
}

// GameState is the wire form of model.GameSession
type GameState struct {
	Players         []Player `json:"players"`
	CurrentPlayerID int      `json:"current_player_id"`
	Stones          []Stone  `json:"stones"`
	GameOver        bool     `json:"game_over"`
	WinnerID        *int     `json:"winner_id"`
}

// GameStateFromModel converts a session to its wire form
func GameStateFromModel(s model.GameSession) GameState {
	state := GameState{
		Players:         make([]Player, len(s.Players)),
		CurrentPlayerID: int(s.CurrentPlayer),
		Stones:          make([]Stone, len(s.Stones)),
		GameOver:        s.GameOver,
	}
	for i, p := range s.Players {
		state.Players[i] = Player{ID: int(p.ID), StonesLeft: p.StonesLeft, Name: p.Name}
	}
	for i, st := range s.Stones {
		state.Stones[i] = Stone{
			ID:        string(st.ID),
			X:         st.X,
			Y:         st.Y,
			Radius:    st.Radius,
			Owner:     int(st.Owner),
			Clustered: st.Clustered,
			OnEdge:    st.OnEdge,
		}
	}
	if s.Winner != nil {
		w := int(*s.Winner)
		state.WinnerID = &w
	}
	return state
}

// ToModel converts a wire state back into a session. Stones pass through
// model.NewStone so malformed entries are rejected rather than reinterpreted.
func (g GameState) ToModel() (model.GameSession, error) {
	if len(g.Players) != model.NumPlayers {
		return model.GameSession{}, model.ErrInvalidSnapshot
	}
	s := model.GameSession{
		CurrentPlayer: model.PlayerID(g.CurrentPlayerID),
		Stones:        make([]model.Stone, 0, len(g.Stones)),
		GameOver:      g.GameOver,
	}
	if !s.CurrentPlayer.Valid() {
		return model.GameSession{}, model.ErrInvalidSnapshot
	}
	for i, p := range g.Players {
		if p.ID != i {
			return model.GameSession{}, model.ErrInvalidSnapshot
		}
		s.Players[i] = model.Player{ID: model.PlayerID(p.ID), StonesLeft: p.StonesLeft, Name: p.Name}
	}
	for _, ws := range g.Stones {
		st, err := model.NewStone(model.StoneID(ws.ID), model.PlayerID(ws.Owner), model.Placement{X: ws.X, Y: ws.Y, OnEdge: ws.OnEdge}, ws.Radius)
		if err != nil {
			return model.GameSession{}, err
		}
		st.Clustered = ws.Clustered
		s.Stones = append(s.Stones, st)
	}
	if g.WinnerID != nil {
		w := model.PlayerID(*g.WinnerID)
		if !w.Valid() {
			return model.GameSession{}, model.ErrInvalidSnapshot
		}
		s.Winner = &w
	}
	return s, nil
}

// StoneIDsFromModel converts stone ids to strings
func StoneIDsFromModel(ids []model.StoneID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// StoneIDsToModel converts wire stone ids to model ids
func StoneIDsToModel(ids []string) []model.StoneID {
	out := make([]model.StoneID, len(ids))
	for i, id := range ids {
		out[i] = model.StoneID(id)
	}
	return out
}
