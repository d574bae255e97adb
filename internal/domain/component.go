package domain

import "github.com/google/uuid"

// ConsumeStrategy identifies how a component is matched against and drained
// from an actor's holdings. It is fixed at construction time; precedence when
// several fields are present is attribute path > tag pool > named lookup.
type ConsumeStrategy string

const (
	// StrategyAttribute consumes a numeric actor attribute at AttributePath.
	StrategyAttribute ConsumeStrategy = "attribute"
	// StrategyTagPool consumes quantity pooled across all actor items sharing
	// any of the component's tags.
	StrategyTagPool ConsumeStrategy = "tag_pool"
	// StrategyNamed consumes quantity from the single same-named actor item.
	StrategyNamed ConsumeStrategy = "named"
)

// Component is a single consumable requirement (or produced output) inside an
// ingredient or product slot.
type Component struct {
	ID   string `json:"id"`
	Name string `json:"name"` // cached display name, used when Ref no longer resolves
	Ref  string `json:"ref"`  // opaque host item reference

	Quantity float64 `json:"quantity"`

	Tags          []string        `json:"tags,omitempty"`
	AttributePath string          `json:"attribute_path,omitempty"`
	Strategy      ConsumeStrategy `json:"strategy"`
}

// NewComponent creates a component with a fresh id and the consumption
// strategy resolved from the provided fields.
func NewComponent(ref, name string, quantity float64, tags []string, attributePath string) Component {
	c := Component{
		ID:            uuid.NewString(),
		Name:          name,
		Ref:           ref,
		Quantity:      quantity,
		Tags:          tags,
		AttributePath: attributePath,
	}
	c.Strategy = c.ResolveStrategy()
	return c
}

// ResolveStrategy derives the consumption strategy from field presence.
// Persisted data written before strategies were explicit lacks the field;
// Normalize calls this to backfill it.
func (c Component) ResolveStrategy() ConsumeStrategy {
	switch {
	case c.AttributePath != "":
		return StrategyAttribute
	case len(c.Tags) > 0:
		return StrategyTagPool
	default:
		return StrategyNamed
	}
}

// DisplayName prefers the resolved snapshot's current name and falls back to
// the cached name when resolution failed.
func (c Component) DisplayName(snap *ItemSnapshot) string {
	if snap != nil && snap.Name != "" {
		return snap.Name
	}
	return c.Name
}
