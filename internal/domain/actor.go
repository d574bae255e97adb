package domain

// OwnedItem is an item held by an actor, as seen by the crafting engine.
// Quantity has already been read through the deployment's configured
// quantity attribute path by the actor store.
type OwnedItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Img      string   `json:"img,omitempty"`
	Quantity float64  `json:"quantity"`
	Tags     []string `json:"tags,omitempty"`
}

// HasAnyTag reports whether the item shares at least one tag with the set.
func (it OwnedItem) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range it.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Actor is a snapshot of the host actor document the crafting engine reads
// and writes through the actor store.
type Actor struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Items      []OwnedItem        `json:"items"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// ItemByName returns the first item with the given name, or nil.
func (a *Actor) ItemByName(name string) *OwnedItem {
	for idx := range a.Items {
		if a.Items[idx].Name == name {
			return &a.Items[idx]
		}
	}
	return nil
}

// ItemsByTags returns items sharing any of the tags, in inventory order.
// Pool order is stable so tag-pool drains are deterministic.
func (a *Actor) ItemsByTags(tags []string) []*OwnedItem {
	var out []*OwnedItem
	for idx := range a.Items {
		if a.Items[idx].HasAnyTag(tags) {
			out = append(out, &a.Items[idx])
		}
	}
	return out
}

// TagQuantity sums quantity across all items sharing any of the tags.
func (a *Actor) TagQuantity(tags []string) float64 {
	var total float64
	for idx := range a.Items {
		if a.Items[idx].HasAnyTag(tags) {
			total += a.Items[idx].Quantity
		}
	}
	return total
}

// HasItemNamed reports whether the actor holds any item with the name.
func (a *Actor) HasItemNamed(name string) bool {
	return a.ItemByName(name) != nil
}

// ItemSnapshot is the resolver's view of an item-like host document.
type ItemSnapshot struct {
	Ref           string   `json:"ref"`
	Name          string   `json:"name"`
	Img           string   `json:"img,omitempty"`
	Quantity      float64  `json:"quantity"`
	Tags          []string `json:"tags,omitempty"`
	AttributePath string   `json:"attribute_path,omitempty"`
}
