package academy

// Repository persists the records served by the academy API.
// Methods return *NotFoundError for unknown IDs, *ConflictError on integrity violations
// and *core.ValidationError when a draft references a record that does not exist.
type Repository interface {
	// Users
	CreateUser(usr User) (User, error)
	GetUser(id ID) (User, error)
	GetUserByEmail(email string) (User, error)
	ListUsers(role string) ([]User, error)
	UpdateInstructor(id ID, d InstructorDraft) (User, error)
	DeleteUser(id ID) error

	// Streams & cohorts
	ListStreams() ([]Stream, error)
	CreateStream(d StreamDraft) (Stream, error)
	UpdateStream(id ID, d StreamDraft) (Stream, error)
	DeleteStream(id ID) error
	ListCohorts(streamID ID) ([]Cohort, error)
	CreateCohort(d CohortDraft) (Cohort, error)
	UpdateCohort(id ID, d CohortDraft) (Cohort, error)
	DeleteCohort(id ID) error

	// Sessions
	ListSessions(cohortID ID) ([]Session, error)
	CreateSession(d SessionDraft) (Session, error)
	UpdateSession(id ID, d SessionDraft) (Session, error)
	DeleteSession(id ID) error

	// Assignments & grading
	ListAssignments(cohortID ID) ([]Assignment, error)
	GetAssignment(id ID) (Assignment, error)
	CreateAssignment(d AssignmentDraft) (Assignment, error)
	UpdateAssignment(id ID, d AssignmentDraft) (Assignment, error)
	DeleteAssignment(id ID) error
	Submit(assignmentID, userID ID) (ID, error)
	AssignmentGrades(assignmentID ID) ([]GradeRow, error)
	GradeBulk(assignmentID ID, bg BulkGrade) (int, error)
	GradeSubmission(submissionID ID, g SubmissionGrade) error

	// Students
	ListStudents(cohortID ID) ([]Student, error)
	CreateStudent(d StudentDraft) (Student, error)
	UpdateStudent(id ID, d StudentDraft) (Student, error)
	DeleteStudent(id ID) error

	// Attendance
	CohortRoster(cohortID ID) ([]RosterEntry, error)
	SessionAttendance(sessionID ID) (SessionAttendance, error)
	MarkAttendance(m MarkAttendance) error
	SetAttendance(sessionID, userID ID, status string) error
	DeleteAttendance(sessionID, userID ID) error
	ClearAttendance(sessionID ID) error

	// Certificates
	ListCertificates() ([]Certificate, error)
	IssueCertificate(d CertificateDraft) (Certificate, error)
	RevokeCertificate(id ID) (Certificate, error)
	DeleteCertificate(id ID) error

	// Announcements
	RecentAnnouncements(limit int) ([]Announcement, error)
	// CreateAnnouncement returns the created announcement and the users it must be delivered to.
	CreateAnnouncement(d AnnouncementDraft) (Announcement, []User, error)
	UpdateAnnouncement(id ID, d AnnouncementDraft) (Announcement, error)
	DeleteAnnouncement(id ID) error
}
