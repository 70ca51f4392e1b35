package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// Catalog holds every card, job, and event definition available to a run.
// It is populated once at startup (builtins plus optional content files)
// and read concurrently afterwards.
type Catalog struct {
	mu     sync.RWMutex
	cards  map[string]*CardDefinition
	jobs   map[string]*JobDefinition
	events map[string]*EventDefinition

	// poolOrder and eventOrder preserve registration order so that
	// rng-driven picks replay identically for a given seed.
	poolOrder  map[string][]string
	eventOrder []string

	logger *zap.Logger
}

// NewCatalog returns an empty catalog.
func NewCatalog(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		cards:     make(map[string]*CardDefinition),
		jobs:      make(map[string]*JobDefinition),
		events:    make(map[string]*EventDefinition),
		poolOrder: make(map[string][]string),
		logger:    logger,
	}
}

// AddCard registers a card definition, replacing any existing entry with the
// same ID.
func (c *Catalog) AddCard(def *CardDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards[def.ID] = def
}

// AddJob registers a job definition. First registration fixes the job's
// position within its pool.
func (c *Catalog) AddJob(def *JobDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.jobs[def.ID]; !exists {
		c.poolOrder[def.Pool] = append(c.poolOrder[def.Pool], def.ID)
	}
	c.jobs[def.ID] = def
}

// AddEvent registers a town event definition.
func (c *Catalog) AddEvent(def *EventDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.events[def.ID]; !exists {
		c.eventOrder = append(c.eventOrder, def.ID)
	}
	c.events[def.ID] = def
}

// Card looks up a card definition by ID.
func (c *Catalog) Card(id string) (*CardDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.cards[id]
	return def, ok
}

// Job looks up a job definition by ID.
func (c *Catalog) Job(id string) (*JobDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.jobs[id]
	return def, ok
}

// Event looks up a town event definition by ID.
func (c *Catalog) Event(id string) (*EventDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.events[id]
	return def, ok
}

// Events returns all town events in registration order.
func (c *Catalog) Events() []*EventDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*EventDefinition, 0, len(c.eventOrder))
	for _, id := range c.eventOrder {
		out = append(out, c.events[id])
	}
	return out
}

// JobsInPool returns the jobs belonging to a hiring pool in registration
// order.
func (c *Catalog) JobsInPool(pool string) []*JobDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.poolOrder[pool]
	out := make([]*JobDefinition, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.jobs[id])
	}
	return out
}

// TreasureByGrade returns the treasure definition for a grade. With several
// candidates the lowest card ID wins so lookups stay stable across loads.
func (c *Catalog) TreasureByGrade(grade effects.TreasureGrade) (*CardDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var ids []string
	for id, def := range c.cards {
		if def.IsTreasure() && def.Grade == grade {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, false
	}
	sort.Strings(ids)
	return c.cards[ids[0]], true
}

// CardCount returns the number of registered card definitions.
func (c *Catalog) CardCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cards)
}

// LoadFile merges a JSON content document into the catalog.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read content file %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse content file %s: %w", path, err)
	}
	c.Merge(&doc)
	c.logger.Info("Loaded content file",
		zap.String("path", path),
		zap.Int("cards", len(doc.Cards)),
		zap.Int("jobs", len(doc.Jobs)),
		zap.Int("events", len(doc.Events)))
	return nil
}

// LoadDir merges every *.json file under dir, in lexical order.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read content dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := c.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Merge applies a parsed document to the catalog.
func (c *Catalog) Merge(doc *Document) {
	for _, card := range doc.Cards {
		c.AddCard(card)
	}
	for _, job := range doc.Jobs {
		c.AddJob(job)
	}
	for _, event := range doc.Events {
		c.AddEvent(event)
	}
}

// Validate checks cross-references between definitions. It returns the first
// problem found.
func (c *Catalog) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for id, def := range c.cards {
		if def.ID != id {
			return fmt.Errorf("card %s: ID field %q does not match key", id, def.ID)
		}
		if def.Name == "" {
			return fmt.Errorf("card %s: missing name", id)
		}
		if def.IsTreasure() && def.GoldValue <= 0 {
			return fmt.Errorf("treasure %s: gold value must be positive", id)
		}
		for gi, group := range def.Groups {
			if err := c.validateGroup(id, gi, group); err != nil {
				return err
			}
		}
	}

	for id, job := range c.jobs {
		if job.Pool == "" {
			return fmt.Errorf("job %s: missing pool", id)
		}
		if job.BasePower < 0 {
			return fmt.Errorf("job %s: negative base power", id)
		}
		for _, next := range job.PromoteTo {
			if _, ok := c.jobs[next]; !ok {
				return fmt.Errorf("job %s: promotion target %s not registered", id, next)
			}
		}
	}

	for id, event := range c.events {
		if len(event.Groups) == 0 {
			return fmt.Errorf("event %s: no effect groups", id)
		}
		if event.Weight < 0 {
			return fmt.Errorf("event %s: negative weight", id)
		}
		for gi, group := range event.Groups {
			if err := c.validateGroup(id, gi, group); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Catalog) validateGroup(owner string, index int, group effects.ConditionGroup) error {
	for _, def := range append(append([]effects.Definition{}, group.Effects...), group.ElseEffects...) {
		switch def.Kind {
		case effects.EffectAddCardDeck, effects.EffectAddCardHand, effects.EffectTransformCard:
			if _, ok := c.cards[def.Card]; !ok {
				return fmt.Errorf("%s group %d: effect %s references unknown card %q", owner, index, def.Kind, def.Card)
			}
		case effects.EffectTriggerEvent:
			if _, ok := c.events[def.Card]; !ok {
				return fmt.Errorf("%s group %d: effect %s references unknown event %q", owner, index, def.Kind, def.Card)
			}
		case effects.EffectCreateUnit, effects.EffectHireUnit:
			if len(c.poolOrder[def.JobPool]) == 0 {
				return fmt.Errorf("%s group %d: effect %s references empty job pool %q", owner, index, def.Kind, def.JobPool)
			}
		}
	}
	return nil
}
