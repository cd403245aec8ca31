package battle

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Room codes avoid visually confusable characters (0/O, 1/I).
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
)

// Ticket is an unclaimed private-room invitation.
type Ticket struct {
	Code       string
	HostConnID uuid.UUID
	CreatedAt  time.Time
}

// TicketBox holds private-room tickets until they are claimed or expire.
type TicketBox struct {
	mu      sync.Mutex
	tickets map[string]Ticket
	ttl     time.Duration
	rng     *rand.Rand
	now     func() time.Time
}

// NewTicketBox creates a ticket box with the given expiry and random source.
func NewTicketBox(ttl time.Duration, rng *rand.Rand, now func() time.Time) *TicketBox {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if now == nil {
		now = time.Now
	}
	return &TicketBox{
		tickets: make(map[string]Ticket),
		ttl:     ttl,
		rng:     rng,
		now:     now,
	}
}

// TTL returns the configured ticket lifetime.
func (b *TicketBox) TTL() time.Duration {
	return b.ttl
}

// Create issues a fresh ticket for the host connection.
func (b *TicketBox) Create(hostConnID uuid.UUID) Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()

	code := b.generateCodeLocked()
	ticket := Ticket{
		Code:       code,
		HostConnID: hostConnID,
		CreatedAt:  b.now(),
	}
	b.tickets[code] = ticket
	return ticket
}

// Claim consumes an unexpired ticket by code. Codes are case-insensitive.
// A claimed or expired ticket cannot be claimed again.
func (b *TicketBox) Claim(code string) (Ticket, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	code = strings.ToUpper(strings.TrimSpace(code))
	ticket, ok := b.tickets[code]
	if !ok {
		return Ticket{}, false
	}
	delete(b.tickets, code)
	if b.now().Sub(ticket.CreatedAt) > b.ttl {
		return Ticket{}, false
	}
	return ticket, true
}

// DropByHost discards any tickets issued by a disconnecting host.
func (b *TicketBox) DropByHost(hostConnID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for code, ticket := range b.tickets {
		if ticket.HostConnID == hostConnID {
			delete(b.tickets, code)
		}
	}
}

// Sweep removes expired tickets and returns how many were dropped.
func (b *TicketBox) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	dropped := 0
	for code, ticket := range b.tickets {
		if now.Sub(ticket.CreatedAt) > b.ttl {
			delete(b.tickets, code)
			dropped++
		}
	}
	return dropped
}

func (b *TicketBox) generateCodeLocked() string {
	for {
		buf := make([]byte, roomCodeLength)
		for i := range buf {
			buf[i] = roomCodeAlphabet[b.rng.Intn(len(roomCodeAlphabet))]
		}
		code := string(buf)
		if _, exists := b.tickets[code]; !exists {
			return code
		}
	}
}
