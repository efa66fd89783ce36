package inmemdb

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/academy"
)

func (db *DB) ListStreams() ([]academy.Stream, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.streams.query(nil), nil
}

func (db *DB) CreateStream(d academy.StreamDraft) (academy.Stream, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	return db.streams.insert(func(id academy.ID) academy.Stream {
		return academy.Stream{ID: id, Title: d.Title, DurationWeeks: d.DurationWeeks, CreatedAt: nowFunc()}
	}), nil
}

func (db *DB) UpdateStream(id academy.ID, d academy.StreamDraft) (academy.Stream, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	st, ok := db.streams.get(id)
	if !ok {
		return academy.Stream{}, academy.NotFound("stream", id)
	}
	st.Title = d.Title
	st.DurationWeeks = d.DurationWeeks
	return *st, nil
}

func (db *DB) DeleteStream(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.streams.get(id); !ok {
		return academy.NotFound("stream", id)
	}
	if db.cohorts.exists(func(co *academy.Cohort) bool { return co.StreamID == id }) {
		return academy.Conflict("stream %d still has cohorts", id)
	}
	db.streams.delete(id)
	return nil
}

// cohort returns a copy of co joined with its stream title.
func (db *DB) cohort(co *academy.Cohort) academy.Cohort {
	c := *co
	if st, ok := db.streams.get(co.StreamID); ok {
		c.StreamTitle = st.Title
	}
	return c
}

// ListCohorts returns the cohorts of a stream, or every cohort when streamID is 0.
func (db *DB) ListCohorts(streamID academy.ID) ([]academy.Cohort, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	rows := db.cohorts.query(func(co *academy.Cohort) bool { return streamID == 0 || co.StreamID == streamID })
	for i := range rows {
		rows[i] = db.cohort(&rows[i])
	}
	return rows, nil
}

func (db *DB) checkCohortDraft(d academy.CohortDraft) error {
	if _, ok := db.streams.get(d.StreamID); !ok {
		return fieldError("stream_id", "stream not found")
	}
	lead, ok := db.users.get(academy.ID(d.LeadInstructorID.Int64))
	if !ok || lead.Role == academy.RoleStudent {
		return fieldError("lead_instructor_id", "instructor not found")
	}
	return nil
}

func (db *DB) CreateCohort(d academy.CohortDraft) (academy.Cohort, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if err := db.checkCohortDraft(d); err != nil {
		return academy.Cohort{}, err
	}
	if d.Status == "" {
		d.Status = academy.CohortUpcoming
	}
	co := db.cohorts.insert(func(id academy.ID) academy.Cohort {
		return academy.Cohort{
			ID:               id,
			CohortName:       d.CohortName,
			StreamID:         d.StreamID,
			LeadInstructorID: d.LeadInstructorID,
			StartDate:        d.StartDate,
			EndDate:          d.EndDate,
			Status:           d.Status,
		}
	})
	return db.cohort(&co), nil
}

func (db *DB) UpdateCohort(id academy.ID, d academy.CohortDraft) (academy.Cohort, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	co, ok := db.cohorts.get(id)
	if !ok {
		return academy.Cohort{}, academy.NotFound("cohort", id)
	}
	if err := db.checkCohortDraft(d); err != nil {
		return academy.Cohort{}, err
	}
	co.CohortName = d.CohortName
	co.StreamID = d.StreamID
	co.LeadInstructorID = d.LeadInstructorID
	co.StartDate = d.StartDate
	co.EndDate = d.EndDate
	if d.Status != "" {
		co.Status = d.Status
	}
	return db.cohort(co), nil
}

func (db *DB) DeleteCohort(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.cohorts.get(id); !ok {
		return academy.NotFound("cohort", id)
	}
	switch {
	case db.sessions.exists(func(s *academy.Session) bool { return s.CohortID == id }):
		return academy.Conflict("cohort %d still has sessions", id)
	case db.assignments.exists(func(a *academy.Assignment) bool { return a.CohortID == id }):
		return academy.Conflict("cohort %d still has assignments", id)
	case db.enrollments.exists(func(e *enrollment) bool { return e.CohortID == id }):
		return academy.Conflict("cohort %d still has students", id)
	}
	db.cohorts.delete(id)
	return nil
}

func nullID(id academy.ID) null.Int64 { return null.Int64From(int64(id)) }
