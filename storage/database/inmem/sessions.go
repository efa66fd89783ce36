package inmemdb

import (
	"github.com/trezcool/academia/core/academy"
)

func (db *DB) ListSessions(cohortID academy.ID) ([]academy.Session, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return db.sessions.query(func(s *academy.Session) bool { return cohortID == 0 || s.CohortID == cohortID }), nil
}

func (db *DB) CreateSession(d academy.SessionDraft) (academy.Session, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.cohorts.get(d.CohortID); !ok {
		return academy.Session{}, fieldError("cohort_id", "cohort not found")
	}
	if d.Status == "" {
		d.Status = academy.SessionScheduled
	}
	return db.sessions.insert(func(id academy.ID) academy.Session {
		s := academy.Session{ID: id}
		applySessionDraft(&s, d)
		return s
	}), nil
}

func (db *DB) UpdateSession(id academy.ID, d academy.SessionDraft) (academy.Session, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	s, ok := db.sessions.get(id)
	if !ok {
		return academy.Session{}, academy.NotFound("session", id)
	}
	if d.CohortID == 0 {
		d.CohortID = s.CohortID
	} else if _, ok := db.cohorts.get(d.CohortID); !ok {
		return academy.Session{}, fieldError("cohort_id", "cohort not found")
	}
	if d.Status == "" {
		d.Status = s.Status
	}
	applySessionDraft(s, d)
	return *s, nil
}

func applySessionDraft(s *academy.Session, d academy.SessionDraft) {
	s.CohortID = d.CohortID
	s.Title = d.Title
	s.Description = d.Description
	s.Instructor = d.Instructor
	s.DeliveryMode = d.DeliveryMode
	s.StartsAt = d.StartsAt.UTC()
	s.MeetingLink = d.MeetingLink
	s.Venue = d.Venue
	s.Status = d.Status
}

// DeleteSession removes a session along with its attendance records.
func (db *DB) DeleteSession(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if !db.sessions.delete(id) {
		return academy.NotFound("session", id)
	}
	db.clearAttendance(id)
	return nil
}
