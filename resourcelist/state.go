package resourcelist

type SlotState struct {
	Key      string
	Label    string
	Status   SlotStatus
	Enabled  bool // the previous slot holds a selection
	Selected string
	Options  []Option
	Err      error // last options fetch failure
}

// State is a snapshot of the controller. It never shares memory with the controller.
type State[E Entity] struct {
	Slots     []SlotState
	Items     []E
	Status    ListStatus
	LastError error
}

func (s State[E]) Loading() bool { return s.Status == ListLoading }

// Complete reports whether every slot holds a selection.
func (s State[E]) Complete() bool {
	for _, sl := range s.Slots {
		if sl.Selected == "" {
			return false
		}
	}
	return true
}

// Label returns the label of the selected option of slot i, or its raw ID when options are unknown.
func (s State[E]) Label(i int) string {
	if i < 0 || i >= len(s.Slots) {
		return ""
	}
	sl := s.Slots[i]
	for _, opt := range sl.Options {
		if opt.ID == sl.Selected {
			return opt.Label
		}
	}
	return sl.Selected
}

func (c *Controller[E, D]) State() State[E] {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State[E]{
		Slots:     make([]SlotState, 0, len(c.slots)),
		Items:     append(make([]E, 0, len(c.items)), c.items...),
		Status:    c.status,
		LastError: c.lastErr,
	}
	for i, s := range c.slots {
		var opts []Option
		if s.options != nil {
			opts = append(make([]Option, 0, len(s.options)), s.options...)
		}
		st.Slots = append(st.Slots, SlotState{
			Key:      s.Key,
			Label:    s.Label,
			Status:   s.status(),
			Enabled:  i == 0 || c.slots[i-1].selected != "",
			Selected: s.selected,
			Options:  opts,
			Err:      s.err,
		})
	}
	return st
}
