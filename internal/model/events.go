package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Game events
	EventStateReplaced EventType = "state_replaced"
	EventClusterFormed EventType = "cluster_formed"
	EventGameEnded     EventType = "game_ended"
	EventTurnChanged   EventType = "turn_changed"

	// Session events
	EventRoomCreated          EventType = "room_created"
	EventGameStarted          EventType = "game_started"
	EventOpponentDisconnected EventType = "opponent_disconnected"
	EventConnectionLost       EventType = "connection_lost"
	EventRoomClosed           EventType = "room_closed"
	EventRelayError           EventType = "relay_error"
)

// Event is the base structure for all events delivered to a presentation layer
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any // Type-specific data
}

// StateReplacedPayload carries the full snapshot after a transition
type StateReplacedPayload struct {
	Session GameSession
}

// ClusterFormedPayload contains data for cluster formed events
type ClusterFormedPayload struct {
	StoneIDs    []StoneID
	Beneficiary PlayerID
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	Winner PlayerID
}

// TurnChangedPayload contains data for turn changed events
type TurnChangedPayload struct {
	Current PlayerID
}

// RoomCreatedPayload contains data for room created events
type RoomCreatedPayload struct {
	Code     RoomCode
	PlayerID PlayerID
}

// GameStartedPayload contains data for game started events
type GameStartedPayload struct {
	Code         RoomCode
	PlayerID     PlayerID
	OpponentName string
}

// RoomClosedPayload contains the relay's reason for evicting the room
type RoomClosedPayload struct {
	Reason string
}

// RelayErrorPayload contains an error reported by the relay
type RelayErrorPayload struct {
	Code    string
	Message string
}
