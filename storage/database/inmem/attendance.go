package inmemdb

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/academy"
)

func (db *DB) roster(cohortID academy.ID) []academy.RosterEntry {
	enrollments := db.enrollments.query(func(e *enrollment) bool { return e.CohortID == cohortID })
	roster := make([]academy.RosterEntry, 0, len(enrollments))
	for _, e := range enrollments {
		entry := academy.RosterEntry{UserID: e.UserID, EnrollmentID: e.ID}
		if usr, ok := db.users.get(e.UserID); ok {
			entry.Name = usr.Name
			entry.Email = usr.Email
		}
		roster = append(roster, entry)
	}
	return roster
}

func (db *DB) CohortRoster(cohortID academy.ID) ([]academy.RosterEntry, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if _, ok := db.cohorts.get(cohortID); !ok {
		return nil, academy.NotFound("cohort", cohortID)
	}
	return db.roster(cohortID), nil
}

// SessionAttendance returns one record per student of the session's cohort; unmarked students have a null status.
func (db *DB) SessionAttendance(sessionID academy.ID) (academy.SessionAttendance, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	s, ok := db.sessions.get(sessionID)
	if !ok {
		return academy.SessionAttendance{}, academy.NotFound("session", sessionID)
	}

	roster := db.roster(s.CohortID)
	sheet := academy.SessionAttendance{Attendance: make([]academy.AttendanceRecord, 0, len(roster))}
	sheet.Summary.Total = len(roster)
	for _, entry := range roster {
		rec := academy.AttendanceRecord{UserID: entry.UserID, Name: entry.Name, Email: entry.Email}
		if status, ok := db.attendance[attendanceKey{sessionID, entry.UserID}]; ok {
			rec.Status = null.StringFrom(status)
			switch status {
			case academy.AttendancePresent:
				sheet.Summary.Present++
			case academy.AttendanceAbsent:
				sheet.Summary.Absent++
			case academy.AttendanceLate:
				sheet.Summary.Late++
			}
		}
		sheet.Attendance = append(sheet.Attendance, rec)
	}
	return sheet, nil
}

func (db *DB) checkAttendee(sessionID, userID academy.ID) error {
	s, ok := db.sessions.get(sessionID)
	if !ok {
		return academy.NotFound("session", sessionID)
	}
	if !db.enrolled(userID, s.CohortID) {
		return fieldError("user_id", "student is not enrolled in the session's cohort")
	}
	return nil
}

// MarkAttendance records the status of every listed student. Either every entry is saved or none.
func (db *DB) MarkAttendance(m academy.MarkAttendance) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for _, entry := range m.Attendance {
		if err := db.checkAttendee(m.SessionID, entry.UserID); err != nil {
			return err
		}
	}
	for _, entry := range m.Attendance {
		db.attendance[attendanceKey{m.SessionID, entry.UserID}] = entry.Status
	}
	return nil
}

func (db *DB) SetAttendance(sessionID, userID academy.ID, status string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if err := db.checkAttendee(sessionID, userID); err != nil {
		return err
	}
	db.attendance[attendanceKey{sessionID, userID}] = status
	return nil
}

func (db *DB) DeleteAttendance(sessionID, userID academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	key := attendanceKey{sessionID, userID}
	if _, ok := db.attendance[key]; !ok {
		return academy.NotFound("attendance record of user", userID)
	}
	delete(db.attendance, key)
	return nil
}

func (db *DB) ClearAttendance(sessionID academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.sessions.get(sessionID); !ok {
		return academy.NotFound("session", sessionID)
	}
	db.clearAttendance(sessionID)
	return nil
}

func (db *DB) clearAttendance(sessionID academy.ID) {
	for key := range db.attendance {
		if key.SessionID == sessionID {
			delete(db.attendance, key)
		}
	}
}
