// Package resourcelist drives one filterable list of remote entities: cascading filter slots,
// list loading, and create/update/delete mutations followed by a refresh from the server.
//
// Fetches started by SetFilter run on their own goroutines. Every response is checked against
// a generation counter on arrival: the last issued fetch wins, never the last arrived.
package resourcelist

import (
	"context"
	"fmt"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type Config[E Entity, D any] struct {
	Noun       string // singular, used in notifications: "stream"
	Collection Collection[E, D]
	Slots      []Slot
	Filters    map[string]string // static filters sent with every list

	// drafts are validated client-side when set
	Validate   *validator.Validate
	Translator ut.Translator

	Sink   NotificationSink
	Logger core.Logger
}

type slot struct {
	Slot
	selected string
	options  []Option
	loading  bool
	loaded   bool
	err      error
	gen      uint64 // bumped whenever the parent selection changes
}

type Controller[E Entity, D any] struct {
	conf Config[E, D]
	sink NotificationSink

	mu      sync.Mutex
	slots   []*slot
	items   []E
	status  ListStatus
	lastErr error
	listGen uint64

	wg sync.WaitGroup
}

func New[E Entity, D any](conf Config[E, D]) (*Controller[E, D], error) {
	if conf.Collection == nil {
		return nil, ErrNoCollection
	}
	c := &Controller[E, D]{
		conf:  conf,
		sink:  conf.Sink,
		slots: make([]*slot, 0, len(conf.Slots)),
		items: []E{},
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	if c.conf.Noun == "" {
		c.conf.Noun = "item"
	}
	for _, s := range conf.Slots {
		c.slots = append(c.slots, &slot{Slot: s})
	}
	return c, nil
}

// Start loads the options of the first slot, or the list when there are no slots.
func (c *Controller[E, D]) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.slots) == 0 {
		c.goLoad(ctx)
		return
	}
	c.goLoadOptions(ctx, 0, "")
}

// Wait blocks until every fetch started so far has settled.
func (c *Controller[E, D]) Wait() {
	c.wg.Wait()
}

// SetFilter selects value (or clears the slot when empty) at slot index i.
// Every slot after i is reset, the list is cleared, and the next slot's options
// (or the list, for the last slot) are fetched asynchronously.
func (c *Controller[E, D]) SetFilter(ctx context.Context, i int, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.slots) {
		return ErrInvalidSlot
	}
	if i > 0 && c.slots[i-1].selected == "" {
		return ErrSlotDisabled
	}

	c.slots[i].selected = value
	for _, down := range c.slots[i+1:] {
		down.reset()
	}

	// entities of another filter combination must never be shown
	c.items = []E{}
	c.status = ListIdle
	c.lastErr = nil
	c.listGen++

	if value == "" {
		return nil
	}
	if i+1 < len(c.slots) {
		c.goLoadOptions(ctx, i+1, value)
	} else {
		c.goLoad(ctx)
	}
	return nil
}

// Load fetches the list for the current filters and replaces the items wholesale.
// It clears the list without any request while the filter chain is incomplete.
// A load superseded by a later filter change or load returns nil and changes nothing.
func (c *Controller[E, D]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.listGen++
	gen := c.listGen
	if !c.chainComplete() {
		c.items = []E{}
		c.status = ListIdle
		c.lastErr = nil
		c.mu.Unlock()
		return nil
	}
	c.status = ListLoading
	filters := c.filters()
	c.mu.Unlock()

	return c.fetch(ctx, gen, filters)
}

// Create validates the draft, creates it server-side, refreshes the list and returns the new entity's ID.
func (c *Controller[E, D]) Create(ctx context.Context, draft D) (string, error) {
	if err := c.validate(&draft); err != nil {
		return "", err
	}

	created, err := c.conf.Collection.Create(ctx, draft)
	if err != nil {
		return "", c.mutationFailed("create", "", err)
	}
	c.mutationSucceeded(fmt.Sprintf("%s created", c.conf.Noun))
	c.refresh(ctx)
	return created.ResourceID(), nil
}

// Update validates the draft and applies it to the entity id, then refreshes the list.
func (c *Controller[E, D]) Update(ctx context.Context, id string, draft D) error {
	if err := c.validate(&draft); err != nil {
		return err
	}

	if _, err := c.conf.Collection.Update(ctx, id, draft); err != nil {
		return c.mutationFailed("update", id, err)
	}
	c.mutationSucceeded(fmt.Sprintf("%s %s updated", c.conf.Noun, id))
	c.refresh(ctx)
	return nil
}

// Delete removes the entity id server-side, then refreshes the list.
// Confirmation is the caller's concern. On failure the items are left untouched.
func (c *Controller[E, D]) Delete(ctx context.Context, id string) error {
	if err := c.conf.Collection.Delete(ctx, id); err != nil {
		return c.mutationFailed("delete", id, err)
	}
	c.mutationSucceeded(fmt.Sprintf("%s %s deleted", c.conf.Noun, id))
	c.refresh(ctx)
	return nil
}

// Mutate runs a server mutation that is not plain CRUD (ie: op "mark attendance")
// with the same contract: one notification either way, and a refresh on success.
func (c *Controller[E, D]) Mutate(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		mErr := &MutationError{Op: op, Err: err}
		c.sink.NotifyError(mErr.Error())
		return mErr
	}
	c.mutationSucceeded(fmt.Sprintf("%s: done", op))
	c.refresh(ctx)
	return nil
}

// Filters returns the filters the list is currently loaded with.
func (c *Controller[E, D]) Filters() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters()
}

func (c *Controller[E, D]) validate(draft *D) error {
	if c.conf.Validate == nil {
		return nil
	}
	return core.ValidateStruct(c.conf.Validate, c.conf.Translator, draft)
}

func (c *Controller[E, D]) mutationFailed(op, id string, err error) error {
	mErr := &MutationError{Op: op, Noun: c.conf.Noun, ID: id, Err: err}
	c.sink.NotifyError(mErr.Error())
	return mErr
}

func (c *Controller[E, D]) mutationSucceeded(msg string) {
	c.sink.NotifySuccess(msg)
}

// refresh reloads the list after a mutation. Fetch failures are notified by Load itself.
func (c *Controller[E, D]) refresh(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		c.debug("refresh after mutation failed", err)
	}
}

// fetch runs a list request of generation gen and applies its outcome unless superseded.
func (c *Controller[E, D]) fetch(ctx context.Context, gen uint64, filters map[string]string) error {
	items, err := c.conf.Collection.List(ctx, filters)

	c.mu.Lock()
	if gen != c.listGen {
		c.mu.Unlock()
		c.debug(fmt.Sprintf("discarding stale %s list", c.conf.Noun), filters)
		return nil
	}
	if err != nil {
		fErr := &FetchError{Noun: c.conf.Noun, Err: err}
		c.items = []E{}
		c.status = ListError
		c.lastErr = fErr
		c.mu.Unlock()

		c.sink.NotifyError(fErr.Error())
		return fErr
	}
	if items == nil {
		items = []E{}
	}
	c.items = items
	c.status = ListReady
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

// goLoad starts an asynchronous list load. c.mu must be held.
func (c *Controller[E, D]) goLoad(ctx context.Context) {
	c.listGen++
	gen := c.listGen
	c.status = ListLoading
	filters := c.filters()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.fetch(ctx, gen, filters)
	}()
}

// goLoadOptions starts an asynchronous load of slot i's options. c.mu must be held.
func (c *Controller[E, D]) goLoadOptions(ctx context.Context, i int, parentID string) {
	s := c.slots[i]
	if s.Options == nil {
		s.loaded = true
		return
	}
	s.loading = true
	s.err = nil
	gen := s.gen

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		opts, err := s.Options(ctx, parentID)

		c.mu.Lock()
		if gen != s.gen {
			c.mu.Unlock()
			c.debug(fmt.Sprintf("discarding stale %s options", s.Label), parentID)
			return
		}
		s.loading = false
		if err != nil {
			s.options = nil
			s.err = err
			c.mu.Unlock()
			c.sink.NotifyError(fmt.Sprintf("failed to load %s options: %s", s.Label, causeMessage(err)))
			return
		}
		s.options = opts
		s.loaded = true
		c.mu.Unlock()
	}()
}

// reset empties a slot whose parent selection changed and invalidates its in-flight options fetch.
func (s *slot) reset() {
	s.selected = ""
	s.options = nil
	s.loading = false
	s.loaded = false
	s.err = nil
	s.gen++
}

func (s *slot) status() SlotStatus {
	switch {
	case s.selected != "":
		return SlotSelected
	case s.loading:
		return SlotOptionsLoading
	case s.loaded:
		return SlotOptionsReady
	default:
		return SlotEmpty
	}
}

func (c *Controller[E, D]) chainComplete() bool {
	for _, s := range c.slots {
		if s.selected == "" {
			return false
		}
	}
	return true
}

func (c *Controller[E, D]) filters() map[string]string {
	filters := make(map[string]string, len(c.conf.Filters)+len(c.slots))
	for k, v := range c.conf.Filters {
		filters[k] = v
	}
	for _, s := range c.slots {
		if s.selected != "" {
			filters[s.Key] = s.selected
		}
	}
	return filters
}

func (c *Controller[E, D]) debug(msg string, args ...interface{}) {
	if c.conf.Logger != nil {
		c.conf.Logger.Debug(msg, args...)
	}
}
