package redis

import (
	"fmt"

	"github.com/mcoot/stonecluster/internal/model"
)

// Key prefix for all relay data
const keyPrefix = "stones"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomIndexKey returns the Redis key for the SET of open room codes
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}
