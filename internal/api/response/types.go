package response

import (
	"time"

	"github.com/mcoot/stonecluster/internal/model"
)

// RoomMember represents a seated peer
type RoomMember struct {
	PlayerID  int    `json:"player_id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Room represents a room and a summary of its cached game
type Room struct {
	Code            string       `json:"code"`
	State           string       `json:"state"`
	Members         []RoomMember `json:"members"`
	CurrentPlayerID int          `json:"current_player_id"`
	StonesLeft      []int        `json:"stones_left"`
	StonesOnBoard   int          `json:"stones_on_board"`
	GameOver        bool         `json:"game_over"`
	WinnerID        *int         `json:"winner_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	LastActivityAt  time.Time    `json:"last_activity_at"`
}

// RoomFromModel converts a model.Room. Seat tokens never leave the relay.
func RoomFromModel(r *model.Room) Room {
	out := Room{
		Code:            string(r.Code),
		State:           string(r.State),
		Members:         make([]RoomMember, len(r.Members)),
		CurrentPlayerID: int(r.Session.CurrentPlayer),
		StonesLeft:      make([]int, len(r.Session.Players)),
		StonesOnBoard:   len(r.Session.ActiveStones()),
		GameOver:        r.Session.GameOver,
		CreatedAt:       r.CreatedAt,
		LastActivityAt:  r.LastActivityAt,
	}
	for i, m := range r.Members {
		out.Members[i] = RoomMember{
			PlayerID:  int(m.PlayerID),
			Name:      m.Name,
			Connected: m.Connected(),
		}
	}
	for i, p := range r.Session.Players {
		out.StonesLeft[i] = p.StonesLeft
	}
	if r.Session.Winner != nil {
		w := int(*r.Session.Winner)
		out.WinnerID = &w
	}
	return out
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// Rules describes the ruleset peers should play with
type Rules struct {
	StoneRadius        float64 `json:"stone_radius"`
	PlayAreaRadius     float64 `json:"play_area_radius"`
	ClusterFactor      float64 `json:"cluster_factor"`
	BothEdgeMultiplier float64 `json:"both_edge_multiplier"`
	OneEdgeMultiplier  float64 `json:"one_edge_multiplier"`
	ClusterScope       string  `json:"cluster_scope"`
	CollisionMode      string  `json:"collision_mode"`
	StonesPerPlayer    int     `json:"stones_per_player"`
}

// RulesFromModel converts a model.Ruleset
func RulesFromModel(r model.Ruleset) Rules {
	return Rules{
		StoneRadius:        r.StoneRadius,
		PlayAreaRadius:     r.PlayAreaRadius,
		ClusterFactor:      r.ClusterFactor,
		BothEdgeMultiplier: r.BothEdgeMultiplier,
		OneEdgeMultiplier:  r.OneEdgeMultiplier,
		ClusterScope:       string(r.Scope),
		CollisionMode:      string(r.Collision),
		StonesPerPlayer:    model.StonesPerPlayer,
	}
}

// ToModel converts the wire ruleset back into a model.Ruleset
func (r Rules) ToModel() model.Ruleset {
	return model.Ruleset{
		StoneRadius:        r.StoneRadius,
		PlayAreaRadius:     r.PlayAreaRadius,
		ClusterFactor:      r.ClusterFactor,
		BothEdgeMultiplier: r.BothEdgeMultiplier,
		OneEdgeMultiplier:  r.OneEdgeMultiplier,
		Scope:              model.ClusterScope(r.ClusterScope),
		Collision:          model.CollisionMode(r.CollisionMode),
	}
}

// Health is the response for the health check
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Seated      int    `json:"seated"`
}
