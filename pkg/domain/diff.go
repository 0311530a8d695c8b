package domain

// SessionDiff represents the changes between two snapshots of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Cart contains only changed, added or deleted lines, keyed by item key.
	// For deletions, the quantity is 0.
	// Clients should merge these updates into their local cart.
	Cart map[string]int `json:"cart,omitempty"`

	// Memory holds entries appended since the old snapshot.
	Memory *MemoryDelta `json:"memory,omitempty"`

	// Orders is set when an order was confirmed between the snapshots.
	Orders *int `json:"orders,omitempty"`
}

// MemoryDelta represents new entries at the tail of the memory log.
// Evictions at the head are reported through Evicted.
type MemoryDelta struct {
	Appended []MemoryEntry `json:"appended"`
	Evicted  int           `json:"evicted,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession (initial load).
// It returns nil when nothing changed.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{
		SessionID: newSession.ID,
		Cart:      diffCart(oldSession, newSession),
		Memory:    diffMemory(oldSession, newSession),
	}

	if oldSession == nil || oldSession.Orders != newSession.Orders {
		if oldSession != nil || newSession.Orders > 0 {
			orders := newSession.Orders
			diff.Orders = &orders
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffCart(old, new *Session) map[string]int {
	delta := make(map[string]int)

	oldQty := make(map[string]int)
	if old != nil {
		for _, l := range old.Cart {
			oldQty[l.ItemKey] = l.Quantity
		}
	}

	for _, l := range new.Cart {
		if q, ok := oldQty[l.ItemKey]; !ok || q != l.Quantity {
			delta[l.ItemKey] = l.Quantity
		}
		delete(oldQty, l.ItemKey)
	}

	// Remaining keys were removed
	for k := range oldQty {
		delta[k] = 0
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffMemory assumes the log only grows at the tail and shrinks at the head.
func diffMemory(old, new *Session) *MemoryDelta {
	if len(new.Memory) == 0 && (old == nil || len(old.Memory) == 0) {
		return nil
	}
	if old == nil {
		return &MemoryDelta{Appended: new.Memory}
	}

	// Find where the old tail sits in the new log
	overlap := 0
	if n := len(old.Memory); n > 0 {
		last := old.Memory[n-1]
		for i := len(new.Memory) - 1; i >= 0; i-- {
			if sameEntry(new.Memory[i], last) {
				overlap = i + 1
				break
			}
		}
	}

	appended := new.Memory[overlap:]
	evicted := len(old.Memory) - overlap
	if evicted < 0 {
		evicted = 0
	}
	if len(appended) == 0 && evicted == 0 {
		return nil
	}
	return &MemoryDelta{Appended: appended, Evicted: evicted}
}

func sameEntry(a, b MemoryEntry) bool {
	return a.Timestamp.Equal(b.Timestamp) && a.UserText == b.UserText && a.AssistantText == b.AssistantText
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return len(d.Cart) == 0 && d.Memory == nil && d.Orders == nil
}
