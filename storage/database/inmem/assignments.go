package inmemdb

import (
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/academy"
)

const submissionSubmitted = "submitted"

func (db *DB) ListAssignments(cohortID academy.ID) ([]academy.Assignment, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return db.assignments.query(func(a *academy.Assignment) bool { return cohortID == 0 || a.CohortID == cohortID }), nil
}

func (db *DB) GetAssignment(id academy.ID) (academy.Assignment, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if a, ok := db.assignments.get(id); ok {
		return *a, nil
	}
	return academy.Assignment{}, academy.NotFound("assignment", id)
}

func (db *DB) CreateAssignment(d academy.AssignmentDraft) (academy.Assignment, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.cohorts.get(d.CohortID); !ok {
		return academy.Assignment{}, fieldError("cohort_id", "cohort not found")
	}
	if d.Status == "" {
		d.Status = academy.AssignmentStatusDraft
	}
	return db.assignments.insert(func(id academy.ID) academy.Assignment {
		a := academy.Assignment{ID: id}
		applyAssignmentDraft(&a, d)
		return a
	}), nil
}

func (db *DB) UpdateAssignment(id academy.ID, d academy.AssignmentDraft) (academy.Assignment, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	a, ok := db.assignments.get(id)
	if !ok {
		return academy.Assignment{}, academy.NotFound("assignment", id)
	}
	if _, ok := db.cohorts.get(d.CohortID); !ok {
		return academy.Assignment{}, fieldError("cohort_id", "cohort not found")
	}
	if d.Status == "" {
		d.Status = a.Status
	}
	applyAssignmentDraft(a, d)
	return *a, nil
}

func applyAssignmentDraft(a *academy.Assignment, d academy.AssignmentDraft) {
	a.CohortID = d.CohortID
	a.Title = d.Title
	a.Description = d.Description
	a.ReferenceMaterial = d.ReferenceMaterial
	a.ResponseType = d.ResponseType
	a.DueAt = d.DueAt.UTC()
	a.MaxScore = d.MaxScore
	a.Status = d.Status
}

func (db *DB) DeleteAssignment(id academy.ID) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.assignments.get(id); !ok {
		return academy.NotFound("assignment", id)
	}
	if db.submissions.exists(func(s *submission) bool { return s.AssignmentID == id }) {
		return academy.Conflict("assignment %d already has submissions", id)
	}
	db.assignments.delete(id)
	return nil
}

// Submit records the submission of a student, replacing any previous one.
func (db *DB) Submit(assignmentID, userID academy.ID) (academy.ID, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	a, ok := db.assignments.get(assignmentID)
	if !ok {
		return 0, academy.NotFound("assignment", assignmentID)
	}
	if !db.enrolled(userID, a.CohortID) {
		return 0, fieldError("user_id", "student is not enrolled in the assignment's cohort")
	}
	if sub, ok := db.submissionOf(assignmentID, userID); ok {
		sub.SubmittedAt = nowFunc()
		sub.Status = submissionSubmitted
		return sub.ID, nil
	}
	sub := db.submissions.insert(func(id academy.ID) submission {
		return submission{ID: id, AssignmentID: assignmentID, UserID: userID, Status: submissionSubmitted, SubmittedAt: nowFunc()}
	})
	return sub.ID, nil
}

func (db *DB) submissionOf(assignmentID, userID academy.ID) (*submission, bool) {
	for _, sub := range db.submissions.rows {
		if sub.AssignmentID == assignmentID && sub.UserID == userID {
			return sub, true
		}
	}
	return nil, false
}

// AssignmentGrades returns one row per student of the assignment's cohort, submitted or not.
func (db *DB) AssignmentGrades(assignmentID academy.ID) ([]academy.GradeRow, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	a, ok := db.assignments.get(assignmentID)
	if !ok {
		return nil, academy.NotFound("assignment", assignmentID)
	}
	roster := db.roster(a.CohortID)
	rows := make([]academy.GradeRow, 0, len(roster))
	for _, entry := range roster {
		row := academy.GradeRow{UserID: entry.UserID, Name: entry.Name, Email: entry.Email}
		if sub, ok := db.submissionOf(assignmentID, entry.UserID); ok {
			row.SubmissionID = nullID(sub.ID)
			row.SubmissionStatus = null.StringFrom(sub.Status)
			row.SubmittedAt = null.TimeFrom(sub.SubmittedAt)
			row.GradeScore = sub.Score
			row.GradeFeedback = sub.Feedback
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GradeBulk grades the submissions of many students at once. Either every grade is saved or none.
func (db *DB) GradeBulk(assignmentID academy.ID, bg academy.BulkGrade) (int, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	a, ok := db.assignments.get(assignmentID)
	if !ok {
		return 0, academy.NotFound("assignment", assignmentID)
	}
	if err := bg.CheckMaxScore(a.MaxScore); err != nil {
		return 0, err
	}

	subs := make([]*submission, 0, len(bg.Grades))
	for _, g := range bg.Grades {
		sub, ok := db.submissionOf(assignmentID, g.UserID)
		if !ok {
			return 0, academy.Conflict("student %d has no submission for assignment %d", g.UserID, assignmentID)
		}
		subs = append(subs, sub)
	}
	for i, g := range bg.Grades {
		subs[i].Score = null.Float64From(g.GradeScore)
		subs[i].Feedback = g.GradeFeedback
		subs[i].Status = g.Status
	}
	return len(subs), nil
}

func (db *DB) GradeSubmission(submissionID academy.ID, g academy.SubmissionGrade) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	sub, ok := db.submissions.get(submissionID)
	if !ok {
		return academy.NotFound("submission", submissionID)
	}
	if a, ok := db.assignments.get(sub.AssignmentID); ok && g.GradeScore > float64(a.MaxScore) {
		return fieldError("grade_score", "score cannot exceed the assignment's max score")
	}
	sub.Score = null.Float64From(g.GradeScore)
	sub.Feedback = g.GradeFeedback
	sub.Status = g.Status
	return nil
}
