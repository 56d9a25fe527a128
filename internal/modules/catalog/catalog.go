package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed data/catalog.json
var embedded embed.FS

// Catalog is the loaded, validated definition set
type Catalog struct {
	traits     map[string]TraitDefinition
	tasks      map[string]TaskDefinition
	milestones []MilestoneDefinition
	ultraRares []UltraRareDefinition
}

// document mirrors the embedded JSON layout
type document struct {
	Traits     []TraitDefinition     `json:"traits"`
	Tasks      []TaskDefinition      `json:"tasks"`
	Milestones []MilestoneDefinition `json:"milestones"`
	UltraRares []UltraRareDefinition `json:"ultra_rares"`
}

// Load parses and validates the embedded catalog document
func Load() (*Catalog, error) {
	data, err := embedded.ReadFile("data/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from a JSON document. Exposed so tests can load
// reduced fixture catalogs.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		traits:     make(map[string]TraitDefinition, len(doc.Traits)),
		tasks:      make(map[string]TaskDefinition, len(doc.Tasks)),
		milestones: doc.Milestones,
		ultraRares: doc.UltraRares,
	}

	for _, t := range doc.Traits {
		if _, dup := c.traits[t.ID]; dup {
			return nil, fmt.Errorf("duplicate trait id: %s", t.ID)
		}
		if !t.Category.IsValid() || !t.Rarity.IsValid() || !t.Polarity.IsValid() {
			return nil, fmt.Errorf("trait %s has invalid category/rarity/polarity", t.ID)
		}
		c.traits[t.ID] = t
	}

	for _, task := range doc.Tasks {
		if _, dup := c.tasks[task.ID]; dup {
			return nil, fmt.Errorf("duplicate task id: %s", task.ID)
		}
		if task.MinAgeDays < 0 || task.MaxAgeDays <= task.MinAgeDays {
			return nil, fmt.Errorf("task %s has invalid age window [%d,%d)", task.ID, task.MinAgeDays, task.MaxAgeDays)
		}
		c.tasks[task.ID] = task
	}

	sort.Slice(c.milestones, func(i, j int) bool {
		return c.milestones[i].Index < c.milestones[j].Index
	})

	if err := c.validateReferences(); err != nil {
		return nil, err
	}

	return c, nil
}

// validateReferences checks cross-references between the tables
func (c *Catalog) validateReferences() error {
	// Conflict pairs must reference known traits and be symmetric
	for id, t := range c.traits {
		for _, other := range t.ConflictsWith {
			o, ok := c.traits[other]
			if !ok {
				return fmt.Errorf("trait %s conflicts with unknown trait %s", id, other)
			}
			if !contains(o.ConflictsWith, id) {
				return fmt.Errorf("trait conflict %s -> %s is not symmetric", id, other)
			}
		}
	}

	prevEnd := -1
	seen := make(map[int]bool)
	for _, m := range c.milestones {
		if seen[m.Index] {
			return fmt.Errorf("duplicate milestone index %d", m.Index)
		}
		seen[m.Index] = true
		if m.WindowStartDays < 0 || m.WindowEndDays <= m.WindowStartDays {
			return fmt.Errorf("milestone %d has invalid window [%d,%d)", m.Index, m.WindowStartDays, m.WindowEndDays)
		}
		if m.WindowStartDays < prevEnd {
			return fmt.Errorf("milestone %d window overlaps the previous milestone", m.Index)
		}
		prevEnd = m.WindowEndDays
		for task := range m.RequiredTaskCounts {
			if _, ok := c.tasks[task]; !ok {
				return fmt.Errorf("milestone %d requires unknown task %s", m.Index, task)
			}
		}
		for _, id := range m.GrantsTraits {
			if _, ok := c.traits[id]; !ok {
				return fmt.Errorf("milestone %d grants unknown trait %s", m.Index, id)
			}
		}
	}

	for _, u := range c.ultraRares {
		t, ok := c.traits[u.TraitID]
		if !ok {
			return fmt.Errorf("ultra-rare entry references unknown trait %s", u.TraitID)
		}
		if t.Rarity != RarityExotic && t.Rarity != RarityEpic {
			return fmt.Errorf("ultra-rare trait %s must be epic or exotic, got %s", u.TraitID, t.Rarity)
		}
		if u.BaseProbability < 0 || u.BaseProbability > 100 {
			return fmt.Errorf("ultra-rare trait %s has base probability outside [0,100]", u.TraitID)
		}
	}

	return nil
}

// Trait looks up a trait definition by id
func (c *Catalog) Trait(id string) (TraitDefinition, bool) {
	t, ok := c.traits[id]
	return t, ok
}

// Task looks up a task definition by id
func (c *Catalog) Task(id string) (TaskDefinition, bool) {
	t, ok := c.tasks[id]
	return t, ok
}

// Traits returns all trait definitions sorted by id
func (c *Catalog) Traits() []TraitDefinition {
	out := make([]TraitDefinition, 0, len(c.traits))
	for _, t := range c.traits {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tasks returns all task definitions sorted by id
func (c *Catalog) Tasks() []TaskDefinition {
	out := make([]TaskDefinition, 0, len(c.tasks))
	for _, t := range c.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Milestones returns milestone definitions in index order
func (c *Catalog) Milestones() []MilestoneDefinition {
	return c.milestones
}

// UltraRares returns the ultra-rare unlock table
func (c *Catalog) UltraRares() []UltraRareDefinition {
	return c.ultraRares
}

// Conflicts reports whether two traits are mutually exclusive
func (c *Catalog) Conflicts(a, b string) bool {
	t, ok := c.traits[a]
	if !ok {
		return false
	}
	return contains(t.ConflictsWith, b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
