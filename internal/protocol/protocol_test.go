package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stonecluster/internal/model"
)

func TestEncodeProducesTypedEnvelope(t *testing.T) {
	b, err := Encode(TypeJoinRoom, JoinRoom{RoomID: "ABC234", Name: "Bob"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"join_room","p":{"room_id":"ABC234","name":"Bob"}}`, string(b))

	env, err := DecodeEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, TypeJoinRoom, env.T)

	join, err := DecodePayload[JoinRoom](env)
	require.NoError(t, err)
	assert.Equal(t, "ABC234", join.RoomID)
}

func TestEncodeNilPayloadIsEmptyObject(t *testing.T) {
	b, err := Encode(TypeRequestRematch, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"request_rematch","p":{}}`, string(b))
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	_, err := DecodeEnvelope(nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`{"p":{}}`))
	assert.Error(t, err)
}

func TestGameStateSurvivesWireConversion(t *testing.T) {
	session := model.NewGameSession("Ann", "Bob")
	st, err := model.NewStone("s-1", model.PlayerHost, model.Placement{X: 1.5, Y: -2, OnEdge: true}, 20)
	require.NoError(t, err)
	st.Clustered = true
	session.Stones = append(session.Stones, st)
	session.Players[0].StonesLeft = 11
	session.Players[1].StonesLeft = 13
	session.CurrentPlayer = model.PlayerGuest

	back, err := GameStateFromModel(session).ToModel()
	require.NoError(t, err)
	assert.Equal(t, session, back)
}

func TestGameStateWinnerIsNullUntilGameOver(t *testing.T) {
	b, err := Encode(TypeRematch, Rematch{State: GameStateFromModel(model.NewGameSession())})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"winner_id":null`)
}

func TestToModelRejectsMalformedState(t *testing.T) {
	valid := GameStateFromModel(model.NewGameSession())

	noPlayers := valid
	noPlayers.Players = nil
	_, err := noPlayers.ToModel()
	assert.ErrorIs(t, err, model.ErrInvalidSnapshot)

	badTurn := valid
	badTurn.CurrentPlayerID = 3
	_, err = badTurn.ToModel()
	assert.ErrorIs(t, err, model.ErrInvalidSnapshot)

	badStone := valid
	badStone.Stones = []Stone{{ID: "s-1", Owner: 0, Radius: 0}}
	_, err = badStone.ToModel()
	assert.ErrorIs(t, err, model.ErrInvalidRadius)
}

func TestErrorCodesMapBothWays(t *testing.T) {
	for _, err := range []error{model.ErrRoomNotFound, model.ErrRoomFull, model.ErrNotPlayerTurn, model.ErrInvalidSeat} {
		wire := ErrorFromErr(err)
		assert.ErrorIs(t, wire.Err(), err)
	}
	assert.Equal(t, CodeInternalError, ErrorFromErr(assert.AnError).Code)
}
