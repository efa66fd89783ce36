// Package inmemdb is an in-memory academy.Repository used by the development API and tests.
package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

var nowFunc = func() time.Time { return time.Now().UTC() }

type (
	// table holds the rows of one record kind. Callers hold DB.mutex.
	table[T any] struct {
		pk   academy.ID
		rows map[academy.ID]*T
	}

	enrollment struct {
		ID         academy.ID
		UserID     academy.ID
		CohortID   academy.ID
		Phone      string
		EnrolledAt time.Time
	}

	submission struct {
		ID           academy.ID
		AssignmentID academy.ID
		UserID       academy.ID
		Status       string
		SubmittedAt  time.Time
		Score        null.Float64
		Feedback     string
	}

	attendanceKey struct {
		SessionID academy.ID
		UserID    academy.ID
	}

	DB struct {
		mutex sync.RWMutex

		users         *table[academy.User]
		streams       *table[academy.Stream]
		cohorts       *table[academy.Cohort]
		sessions      *table[academy.Session]
		assignments   *table[academy.Assignment]
		enrollments   *table[enrollment]
		submissions   *table[submission]
		certificates  *table[academy.Certificate]
		announcements *table[academy.Announcement]
		attendance    map[attendanceKey]string
	}
)

var _ academy.Repository = (*DB)(nil)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[academy.ID]*T)}
}

func (t *table[T]) insert(build func(id academy.ID) T) T {
	t.pk++
	row := build(t.pk)
	t.rows[t.pk] = &row
	return row
}

func (t *table[T]) get(id academy.ID) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) delete(id academy.ID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// query returns copies of the rows matching match (all rows when nil), in insertion order.
func (t *table[T]) query(match func(row *T) bool) []T {
	ids := make([]academy.ID, 0, len(t.rows))
	for id, row := range t.rows {
		if match == nil || match(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, *t.rows[id])
	}
	return rows
}

func (t *table[T]) exists(match func(row *T) bool) bool {
	for _, row := range t.rows {
		if match(row) {
			return true
		}
	}
	return false
}

func Open() *DB {
	return &DB{
		users:         newTable[academy.User](),
		streams:       newTable[academy.Stream](),
		cohorts:       newTable[academy.Cohort](),
		sessions:      newTable[academy.Session](),
		assignments:   newTable[academy.Assignment](),
		enrollments:   newTable[enrollment](),
		submissions:   newTable[submission](),
		certificates:  newTable[academy.Certificate](),
		announcements: newTable[academy.Announcement](),
		attendance:    make(map[attendanceKey]string),
	}
}

// Seed creates the admin account configured in conf unless a user with that email exists.
func Seed(db *DB, conf *core.Config) (academy.User, error) {
	if usr, err := db.GetUserByEmail(conf.Seed.AdminEmail); err == nil {
		return usr, nil
	}
	usr := academy.User{
		Name:    conf.Seed.AdminName,
		Email:   conf.Seed.AdminEmail,
		Role:    academy.RoleAdmin,
		IsAdmin: true,
	}
	if err := usr.SetPassword(conf.Seed.AdminPassword); err != nil {
		return academy.User{}, err
	}
	return db.CreateUser(usr)
}

// fieldError reports a draft field referencing a missing record.
func fieldError(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}
