package domain

// PendingItem is a snapshot of a product staged for delayed delivery.
type PendingItem struct {
	Name     string   `json:"name"`
	Img      string   `json:"img,omitempty"`
	Quantity float64  `json:"quantity"`
	Tags     []string `json:"tags,omitempty"`
}

// PendingCraft is a delayed craft staged on an actor until the world clock
// reaches ReadyAt, at which point the sweep merges the items into the
// actor's inventory and removes the entry. There is no cancellation path.
type PendingCraft struct {
	RequestID string        `json:"request_id"`
	ActorID   string        `json:"actor_id"`
	ReadyAt   int64         `json:"ready_at"` // world-seconds
	Items     []PendingItem `json:"items"`
}

// Ready reports whether the entry is due at the given world time.
func (p PendingCraft) Ready(worldTime int64) bool {
	return p.ReadyAt <= worldTime
}
