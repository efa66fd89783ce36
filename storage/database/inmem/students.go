package inmemdb

import (
	"github.com/trezcool/academia/core/academy"
)

func (db *DB) enrolled(userID, cohortID academy.ID) bool {
	return db.enrollments.exists(func(e *enrollment) bool { return e.UserID == userID && e.CohortID == cohortID })
}

// student joins an enrollment with its user, cohort and stream.
func (db *DB) student(e *enrollment) academy.Student {
	s := academy.Student{
		ID:           e.ID,
		UserID:       e.UserID,
		Phone:        e.Phone,
		CohortID:     e.CohortID,
		EnrollmentID: e.ID,
		EnrolledAt:   e.EnrolledAt,
	}
	if usr, ok := db.users.get(e.UserID); ok {
		s.Name = usr.Name
		s.Email = usr.Email
	}
	if co, ok := db.cohorts.get(e.CohortID); ok {
		joined := db.cohort(co)
		s.CohortName = joined.CohortName
		s.StreamTitle = joined.StreamTitle
	}
	return s
}

// ListStudents returns the students of a cohort, or every enrolled student when cohortID is 0.
func (db *DB) ListStudents(cohortID academy.ID) ([]academy.Student, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	enrollments := db.enrollments.query(func(e *enrollment) bool { return cohortID == 0 || e.CohortID == cohortID })
	students := make([]academy.Student, 0, len(enrollments))
	for i := range enrollments {
		students = append(students, db.student(&enrollments[i]))
	}
	return students, nil
}

// CreateStudent enrolls a student in a cohort, creating their account on first enrollment.
func (db *DB) CreateStudent(d academy.StudentDraft) (academy.Student, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.cohorts.get(d.CohortID); !ok {
		return academy.Student{}, fieldError("cohort_id", "cohort not found")
	}

	usr, exists := db.userByEmail(d.Email)
	switch {
	case !exists:
		created, err := db.createUser(academy.User{Name: d.Name, Email: d.Email, Role: academy.RoleStudent})
		if err != nil {
			return academy.Student{}, err
		}
		usr = &created
	case usr.Role != academy.RoleStudent:
		return academy.Student{}, academy.ErrEmailExists
	case db.enrolled(usr.ID, d.CohortID):
		return academy.Student{}, academy.Conflict("%s is already enrolled in cohort %d", d.Email, d.CohortID)
	}

	e := db.enrollments.insert(func(id academy.ID) enrollment {
		return enrollment{ID: id, UserID: usr.ID, CohortID: d.CohortID, Phone: d.Phone, EnrolledAt: nowFunc()}
	})
	return db.student(&e), nil
}

func (db *DB) UpdateStudent(id academy.ID, d academy.StudentDraft) (academy.Student, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	e, ok := db.enrollments.get(id)
	if !ok {
		return academy.Student{}, academy.NotFound("student", id)
	}
	if _, ok := db.cohorts.get(d.CohortID); !ok {
		return academy.Student{}, fieldError("cohort_id", "cohort not found")
	}
	if other, exists := db.userByEmail(d.Email); exists && other.ID != e.UserID {
		return academy.Student{}, academy.ErrEmailExists
	}
	if d.CohortID != e.CohortID && db.enrolled(e.UserID, d.CohortID) {
		return academy.Student{}, academy.Conflict("%s is already enrolled in cohort %d", d.Email, d.CohortID)
	}

	if usr, ok := db.users.get(e.UserID); ok {
		usr.Name = d.Name
		usr.Email = d.Email
	}
	e.CohortID = d.CohortID
	e.Phone = d.Phone
	return db.student(e), nil
}

// DeleteStudent removes an enrollment. The account goes with its last enrollment.
func (db *DB) DeleteStudent(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	e, ok := db.enrollments.get(id)
	if !ok {
		return academy.NotFound("student", id)
	}
	if db.certificates.exists(func(c *academy.Certificate) bool { return c.EnrollmentID == id && !c.Revoked }) {
		return academy.Conflict("student %d holds a certificate; revoke it first", id)
	}
	userID := e.UserID
	db.enrollments.delete(id)
	if !db.enrollments.exists(func(e *enrollment) bool { return e.UserID == userID }) {
		db.users.delete(userID)
	}
	return nil
}
