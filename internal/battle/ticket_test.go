package battle

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTicketBox(now *time.Time) *TicketBox {
	return NewTicketBox(5*time.Minute, rand.New(rand.NewSource(1)), func() time.Time { return *now })
}

func TestTicketCodeShape(t *testing.T) {
	now := time.Now()
	box := newTestTicketBox(&now)

	ticket := box.Create(uuid.New())
	assert.Len(t, ticket.Code, roomCodeLength)
	for _, ch := range ticket.Code {
		assert.True(t, strings.ContainsRune(roomCodeAlphabet, ch), "unexpected character %q", ch)
	}
}

func TestTicketClaimIsOneShot(t *testing.T) {
	now := time.Now()
	box := newTestTicketBox(&now)
	host := uuid.New()

	ticket := box.Create(host)

	claimed, ok := box.Claim(ticket.Code)
	require.True(t, ok)
	assert.Equal(t, host, claimed.HostConnID)

	_, ok = box.Claim(ticket.Code)
	assert.False(t, ok)
}

func TestTicketClaimIsCaseInsensitive(t *testing.T) {
	now := time.Now()
	box := newTestTicketBox(&now)

	ticket := box.Create(uuid.New())
	_, ok := box.Claim("  " + strings.ToLower(ticket.Code) + " ")
	assert.True(t, ok)
}

func TestTicketExpires(t *testing.T) {
	now := time.Now()
	box := newTestTicketBox(&now)

	ticket := box.Create(uuid.New())
	now = now.Add(5*time.Minute + time.Second)

	_, ok := box.Claim(ticket.Code)
	assert.False(t, ok)
}

func TestTicketDropByHost(t *testing.T) {
	now := time.Now()
	box := newTestTicketBox(&now)
	host := uuid.New()

	ticket := box.Create(host)
	other := box.Create(uuid.New())

	box.DropByHost(host)

	_, ok := box.Claim(ticket.Code)
	assert.False(t, ok)
	_, ok = box.Claim(other.Code)
	assert.True(t, ok)
}

func TestTicketSweep(t *testing.T) {
	now := time.Now()
	box := newTestTicketBox(&now)

	box.Create(uuid.New())
	box.Create(uuid.New())
	now = now.Add(6 * time.Minute)
	fresh := box.Create(uuid.New())

	assert.Equal(t, 2, box.Sweep())

	_, ok := box.Claim(fresh.Code)
	assert.True(t, ok)
}
