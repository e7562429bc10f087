package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/stonecluster/internal/dependencies/mocks"
	"github.com/mcoot/stonecluster/internal/model"
	"github.com/mcoot/stonecluster/internal/relay"
	"github.com/mcoot/stonecluster/internal/services/geometry"
	"github.com/mcoot/stonecluster/internal/services/room"
	"github.com/mcoot/stonecluster/internal/storage/memory"
	"github.com/mcoot/stonecluster/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(room.DefaultConfig())
}

// NewTestAppWithConfig creates a test App with the given room settings.
// Seat tokens are hashed at the minimum bcrypt cost.
func NewTestAppWithConfig(roomCfg room.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs("conn")

	roomCfg.SeatTokenCost = bcrypt.MinCost
	app := newWithDependencies(store, mockClock, mockRandom, mockIDs,
		model.DefaultRuleset(), roomCfg, relay.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}

// NewTestPeer creates a Peer with the mock clock and predictable stone ids
func (t *TestApp) NewTestPeer(prefix string) *Peer {
	return &Peer{
		Clock:    t.MockClock,
		IDs:      mocks.NewMockIDs(prefix),
		Random:   t.MockRandom,
		Geometry: geometry.New(t.Rules),
		Logger:   testutil.NopLogger(),
	}
}
