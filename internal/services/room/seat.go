package room

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stonecluster/internal/model"
)

// seatTokenBytes is the entropy of a seat token before hex encoding
const seatTokenBytes = 16

// issueSeatToken returns a fresh token for the caller and the hash kept in the room
func (c *Controller) issueSeatToken() (string, []byte, error) {
	token := c.random.Token(seatTokenBytes)
	hash, err := bcrypt.GenerateFromPassword([]byte(token), c.cfg.SeatTokenCost)
	if err != nil {
		return "", nil, err
	}
	return token, hash, nil
}

// checkSeatToken verifies a presented token against the member's stored hash
func checkSeatToken(member *model.RoomMember, token string) error {
	if len(member.SeatTokenHash) == 0 || token == "" {
		return model.ErrInvalidSeat
	}
	if err := bcrypt.CompareHashAndPassword(member.SeatTokenHash, []byte(token)); err != nil {
		return model.ErrInvalidSeat
	}
	return nil
}
