package resourcelist

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidSlot  = errors.New("invalid filter slot")
	ErrSlotDisabled = errors.New("filter slot disabled: select the previous filter first")
	ErrNoCollection = errors.New("resource list has no collection")
)

// Entity is any record of a remote collection.
type Entity interface {
	ResourceID() string
}

// Collection is the remote collection of one entity kind, mutated through drafts D.
type Collection[E Entity, D any] interface {
	List(ctx context.Context, filters map[string]string) ([]E, error)
	Create(ctx context.Context, draft D) (E, error)
	Update(ctx context.Context, id string, draft D) (E, error)
	Delete(ctx context.Context, id string) error
}

// NotificationSink surfaces outcomes to the user. Calls are fire-and-forget.
type NotificationSink interface {
	NotifySuccess(msg string)
	NotifyError(msg string)
}

type nopSink struct{}

func (nopSink) NotifySuccess(string) {}
func (nopSink) NotifyError(string)   {}

// Option is one choice of a filter slot.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// OptionsFunc loads the options of a slot from the selection of its parent (empty for the first slot).
type OptionsFunc func(ctx context.Context, parentID string) ([]Option, error)

// Slot is one level of a cascading filter chain.
type Slot struct {
	Key     string // filter key sent to the collection, ie: cohort_id
	Label   string
	Options OptionsFunc
}

type SlotStatus int

const (
	SlotEmpty SlotStatus = iota
	SlotOptionsLoading
	SlotOptionsReady
	SlotSelected
)

func (s SlotStatus) String() string {
	switch s {
	case SlotOptionsLoading:
		return "loading"
	case SlotOptionsReady:
		return "ready"
	case SlotSelected:
		return "selected"
	default:
		return "empty"
	}
}

type ListStatus int

const (
	ListIdle ListStatus = iota
	ListLoading
	ListReady
	ListError
)

func (s ListStatus) String() string {
	switch s {
	case ListLoading:
		return "loading"
	case ListReady:
		return "ready"
	case ListError:
		return "error"
	default:
		return "idle"
	}
}

// FetchError is returned when the list cannot be loaded.
type FetchError struct {
	Noun string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load %ss: %s", e.Noun, causeMessage(e.Err))
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError is returned when the server rejects a create, update, delete or custom mutation.
// Noun is empty for custom mutations: their Op names the whole action.
type MutationError struct {
	Op   string
	Noun string
	ID   string
	Err  error
}

func (e *MutationError) Error() string {
	action := e.Op
	if e.Noun != "" {
		action += " " + e.Noun
	}
	if e.ID != "" {
		action += " " + e.ID
	}
	return fmt.Sprintf("failed to %s: %s", action, causeMessage(e.Err))
}

func (e *MutationError) Unwrap() error { return e.Err }

// NotFound reports whether the mutation failed because the entity no longer exists server-side.
func (e *MutationError) NotFound() bool { return IsNotFound(e.Err) }

// notFounder is implemented by collection errors that can tell a missing entity apart.
type notFounder interface {
	NotFound() bool
}

func IsNotFound(err error) bool {
	var nf notFounder
	return errors.As(err, &nf) && nf.NotFound()
}

func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	return errors.Cause(err).Error()
}
