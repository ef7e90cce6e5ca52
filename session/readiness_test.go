package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codenames-sync/models"
)

func TestAllSlotsFilled(t *testing.T) {
	three := stateV(1, dave, bob, carol)
	assert.False(t, AllSlotsFilled(&three))
	assert.Equal(t, []models.Slot{{Color: models.Blue, Role: models.Spymaster}}, OpenSlots(&three))

	four := stateV(2, dave, bob, carol, erin)
	assert.True(t, AllSlotsFilled(&four))
	assert.Empty(t, OpenSlots(&four))
}

func TestAllSlotsFilled_Degenerate(t *testing.T) {
	assert.False(t, AllSlotsFilled(nil))
	assert.Len(t, OpenSlots(nil), 4)

	empty := stateV(1)
	assert.False(t, AllSlotsFilled(&empty))

	// two players in one slot
	twin := dave
	twin.SessionID = "s-twin"
	doubled := stateV(1, dave, twin, bob, carol, erin)
	assert.False(t, AllSlotsFilled(&doubled))

	// one session holding two slots
	sameSession := erin
	sameSession.SessionID = carol.SessionID
	shared := stateV(1, dave, bob, carol, sameSession)
	assert.False(t, AllSlotsFilled(&shared))
}
