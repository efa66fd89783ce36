package academy

import (
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// Statuses
const (
	CohortUpcoming  = "upcoming"
	CohortActive    = "active"
	CohortCompleted = "completed"

	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"

	AssignmentStatusDraft     = "draft"
	AssignmentStatusPublished = "published"
	AssignmentStatusClosed    = "closed"

	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"

	GradeGraded   = "graded"
	GradeReturned = "returned"

	AudienceGlobal = "global"
	AudienceStream = "stream"

	DeliveryOnline   = "online"
	DeliveryPhysical = "physical"
)

// DateLayout is the wire format of calendar dates (cohort start and end dates).
const DateLayout = "2006-01-02"

// ID identifies any academy record. IDs are integers on the wire.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

func ParseID(s string) (ID, error) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

type (
	Stream struct {
		ID            ID        `json:"id"`
		Title         string    `json:"title"`
		DurationWeeks int       `json:"duration_weeks"`
		CreatedAt     time.Time `json:"created_at"`
	}

	Cohort struct {
		ID               ID          `json:"id"`
		CohortName       string      `json:"cohort_name"`
		StreamID         ID          `json:"stream_id"`
		StreamTitle      string      `json:"stream_title"`
		LeadInstructorID null.Int64  `json:"lead_instructor_id"`
		StartDate        string      `json:"start_date"`
		EndDate          null.String `json:"end_date"`
		Status           string      `json:"status"`
	}

	Session struct {
		ID           ID          `json:"id"`
		CohortID     ID          `json:"cohort_id"`
		Title        string      `json:"title"`
		Description  string      `json:"description"`
		Instructor   string      `json:"instructor"`
		DeliveryMode string      `json:"delivery_mode"`
		StartsAt     time.Time   `json:"starts_at"`
		MeetingLink  null.String `json:"meeting_link"`
		Venue        null.String `json:"venue"`
		Status       string      `json:"status"`
	}

	Assignment struct {
		ID                ID        `json:"id"`
		CohortID          ID        `json:"cohort_id"`
		Title             string    `json:"title"`
		Description       string    `json:"description"`
		ReferenceMaterial string    `json:"reference_material"`
		ResponseType      string    `json:"response_type"`
		DueAt             time.Time `json:"due_at"`
		MaxScore          int       `json:"max_score"`
		Status            string    `json:"status"`
	}

	// Student is an enrolled user, joined with their cohort and stream.
	Student struct {
		ID           ID        `json:"id"`
		UserID       ID        `json:"user_id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		Phone        string    `json:"phone"`
		CohortID     ID        `json:"cohort_id"`
		StreamTitle  string    `json:"stream_title"`
		CohortName   string    `json:"cohort_name"`
		EnrollmentID ID        `json:"enrollment_id"`
		EnrolledAt   time.Time `json:"enrolled_at"`
	}

	User struct {
		ID           ID     `json:"id" yaml:"id"`
		Name         string `json:"name" yaml:"name"`
		Email        string `json:"email" yaml:"email"`
		Role         string `json:"role" yaml:"role"`
		IsAdmin      bool   `json:"is_admin" yaml:"is_admin"`
		PasswordHash []byte `json:"-" yaml:"-"`
	}

	Certificate struct {
		ID                ID        `json:"id"`
		UserID            ID        `json:"user_id"`
		EnrollmentID      ID        `json:"enrollment_id"`
		CertificateNumber string    `json:"certificate_number"`
		IssuedAt          time.Time `json:"issued_at"`
		Revoked           bool      `json:"revoked"`
		RevokedAt         null.Time `json:"revoked_at"`
	}

	Announcement struct {
		ID           ID         `json:"id"`
		AudienceType string     `json:"audience_type"`
		StreamID     null.Int64 `json:"stream_id"`
		Title        string     `json:"title"`
		MessageBody  string     `json:"message_body"`
		CreatedAt    time.Time  `json:"created_at"`
	}

	// AttendanceRecord is one roster row of a session. A null Status means unmarked.
	AttendanceRecord struct {
		UserID ID          `json:"user_id"`
		Name   string      `json:"name"`
		Email  string      `json:"email"`
		Status null.String `json:"status"`
	}

	// GradeRow is one student row of an assignment, with their submission and grade if any.
	GradeRow struct {
		UserID           ID           `json:"user_id"`
		Name             string       `json:"name"`
		Email            string       `json:"email"`
		SubmissionID     null.Int64   `json:"submission_id"`
		SubmissionStatus null.String  `json:"submission_status"`
		SubmittedAt      null.Time    `json:"submitted_at"`
		GradeScore       null.Float64 `json:"grade_score"`
		GradeFeedback    string       `json:"grade_feedback"`
	}

	AttendanceSummary struct {
		Total   int `json:"total"`
		Present int `json:"present"`
		Absent  int `json:"absent"`
		Late    int `json:"late"`
	}

	// SessionAttendance is the attendance sheet of one session.
	SessionAttendance struct {
		Summary    AttendanceSummary  `json:"summary"`
		Attendance []AttendanceRecord `json:"attendance"`
	}

	// RosterEntry is one student enrolled in a cohort.
	RosterEntry struct {
		UserID       ID     `json:"user_id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		EnrollmentID ID     `json:"enrollment_id"`
	}
)

func (s Stream) ResourceID() string           { return s.ID.String() }
func (c Cohort) ResourceID() string           { return c.ID.String() }
func (s Session) ResourceID() string          { return s.ID.String() }
func (a Assignment) ResourceID() string       { return a.ID.String() }
func (s Student) ResourceID() string          { return s.ID.String() }
func (u User) ResourceID() string             { return u.ID.String() }
func (c Certificate) ResourceID() string      { return c.ID.String() }
func (a Announcement) ResourceID() string     { return a.ID.String() }
func (r AttendanceRecord) ResourceID() string { return r.UserID.String() }
func (r GradeRow) ResourceID() string         { return r.UserID.String() }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// IsMarked reports whether the student's attendance was recorded.
func (r AttendanceRecord) IsMarked() bool { return r.Status.Valid && r.Status.String != "" }

// IsGraded reports whether the student's submission was graded.
func (r GradeRow) IsGraded() bool { return r.GradeScore.Valid }
