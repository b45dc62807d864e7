package matchmaking

import (
	"strings"

	"github.com/samber/lo"
)

// WaitingEntry is one queued, unmatched match request.
type WaitingEntry struct {
	UserID    string
	Interests []string
}

// WaitingPool holds users currently seeking a partner, in arrival order.
// Entries whose user has lost every connection are swept lazily at lookup
// time rather than eagerly on disconnect.
//
// WaitingPool is not safe for concurrent use on its own; the owning Service
// serializes access.
type WaitingPool struct {
	entries []WaitingEntry
}

func NewWaitingPool() *WaitingPool {
	return &WaitingPool{}
}

// Enqueue appends a waiting entry. If the user is already queued the
// existing entry keeps its place and only its interests are refreshed, so a
// user never appears twice.
func (p *WaitingPool) Enqueue(userID string, interests []string) {
	interests = normalizeInterests(interests)
	for i := range p.entries {
		if p.entries[i].UserID == userID {
			p.entries[i].Interests = interests
			return
		}
	}
	p.entries = append(p.entries, WaitingEntry{UserID: userID, Interests: interests})
}

// Remove drops the user's entry if present.
func (p *WaitingPool) Remove(userID string) {
	p.entries = lo.Reject(p.entries, func(e WaitingEntry, _ int) bool {
		return e.UserID == userID
	})
}

// Contains reports whether the user is queued.
func (p *WaitingPool) Contains(userID string) bool {
	return lo.ContainsBy(p.entries, func(e WaitingEntry) bool {
		return e.UserID == userID
	})
}

// Len returns the number of queued entries, stale ones included.
func (p *WaitingPool) Len() int {
	return len(p.entries)
}

// Sweep discards every entry whose user no longer has a live connection.
func (p *WaitingPool) Sweep(alive func(userID string) bool) {
	p.entries = lo.Filter(p.entries, func(e WaitingEntry, _ int) bool {
		return alive(e.UserID)
	})
}

// FindAndRemove runs the pairing scan for a requester: sweep stale entries,
// then pick the earliest-queued other user with an overlapping interest, or
// failing that the earliest-queued other user at all. First fit wins over
// best fit so nobody is starved by later arrivals with more overlap. The
// chosen entry is removed from the pool.
func (p *WaitingPool) FindAndRemove(userID string, interests []string, alive func(string) bool) (WaitingEntry, bool) {
	p.Sweep(alive)

	interests = normalizeInterests(interests)

	pick := -1
	for i, e := range p.entries {
		if e.UserID == userID {
			continue
		}
		if len(lo.Intersect(e.Interests, interests)) > 0 {
			pick = i
			break
		}
		if pick == -1 {
			// Earliest non-self entry, kept as the fallback when no
			// interest overlap exists anywhere in the pool.
			pick = i
		}
	}
	if pick == -1 {
		return WaitingEntry{}, false
	}

	entry := p.entries[pick]
	p.entries = append(p.entries[:pick], p.entries[pick+1:]...)
	return entry, true
}

// normalizeInterests trims whitespace, drops empties and duplicates, and
// preserves order.
func normalizeInterests(interests []string) []string {
	trimmed := lo.FilterMap(interests, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return lo.Uniq(trimmed)
}
