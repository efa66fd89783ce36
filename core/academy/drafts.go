package academy

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Drafts are the create/update payloads sent to the API.
// They are cleaned then validated client-side before any request is made.
type (
	StreamDraft struct {
		Title         string `json:"title" validate:"notblank"`
		DurationWeeks int    `json:"duration_weeks" validate:"required,min=1,max=104"`
	}

	CohortDraft struct {
		CohortName       string      `json:"cohort_name" validate:"notblank"`
		StreamID         ID          `json:"stream_id" validate:"required"`
		LeadInstructorID null.Int64  `json:"lead_instructor_id" validate:"required"`
		StartDate        string      `json:"start_date" validate:"required,datetime=2006-01-02"`
		EndDate          null.String `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
		Status           string      `json:"status" validate:"omitempty,oneof=upcoming active completed"`
	}

	SessionDraft struct {
		CohortID     ID          `json:"cohort_id" validate:"required"`
		Title        string      `json:"title" validate:"notblank"`
		Description  string      `json:"description"`
		Instructor   string      `json:"instructor"`
		DeliveryMode string      `json:"delivery_mode" validate:"required,oneof=online physical"`
		StartsAt     time.Time   `json:"starts_at" validate:"required"`
		MeetingLink  null.String `json:"meeting_link" validate:"omitempty,url"`
		Venue        null.String `json:"venue"`
		Status       string      `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	}

	AssignmentDraft struct {
		CohortID          ID        `json:"cohort_id" validate:"required"`
		Title             string    `json:"title" validate:"notblank"`
		Description       string    `json:"description"`
		ReferenceMaterial string    `json:"reference_material"`
		ResponseType      string    `json:"response_type" validate:"required,oneof=link file text"`
		DueAt             time.Time `json:"due_at" validate:"required"`
		MaxScore          int       `json:"max_score" validate:"required,min=1"`
		Status            string    `json:"status" validate:"omitempty,oneof=draft published closed"`
	}

	StudentDraft struct {
		Name     string `json:"name" validate:"notblank"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"omitempty,max=20"`
		CohortID ID     `json:"cohort_id" validate:"required"`
	}

	InstructorDraft struct {
		Name  string `json:"name" validate:"notblank"`
		Email string `json:"email" validate:"required,email"`
	}

	// CertificateDraft issues a certificate for one enrollment.
	CertificateDraft struct {
		UserID       ID `json:"user_id" validate:"required"`
		EnrollmentID ID `json:"enrollment_id" validate:"required"`
	}

	AnnouncementDraft struct {
		AudienceType string     `json:"audience_type" validate:"required,oneof=global stream"`
		StreamID     null.Int64 `json:"stream_id"`
		Title        string     `json:"title" validate:"notblank"`
		MessageBody  string     `json:"message_body" validate:"notblank"`
	}

	AttendanceEntry struct {
		UserID ID     `json:"user_id" validate:"required"`
		Status string `json:"status" validate:"required,oneof=present absent late"`
	}

	// MarkAttendance records the attendance of a whole session roster at once.
	MarkAttendance struct {
		SessionID  ID                `json:"session_id" validate:"required"`
		Attendance []AttendanceEntry `json:"attendance" validate:"required,min=1,dive"`
	}

	AttendanceStatus struct {
		Status string `json:"status" validate:"required,oneof=present absent late"`
	}

	SubmissionGrade struct {
		GradeScore    float64 `json:"grade_score" validate:"min=0"`
		GradeFeedback string  `json:"grade_feedback"`
		Status        string  `json:"status" validate:"omitempty,oneof=graded returned"`
	}

	GradeInput struct {
		UserID        ID      `json:"user_id" validate:"required"`
		GradeScore    float64 `json:"grade_score" validate:"min=0"`
		GradeFeedback string  `json:"grade_feedback"`
		Status        string  `json:"status" validate:"omitempty,oneof=graded returned"`
	}

	BulkGrade struct {
		Grades []GradeInput `json:"grades" validate:"required,min=1,dive"`
	}

	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
)

func (d *StreamDraft) Clean() { d.Title = core.CleanString(d.Title) }

func (d *CohortDraft) Clean() {
	d.CohortName = core.CleanString(d.CohortName)
	d.StartDate = core.CleanString(d.StartDate)
	if d.EndDate.Valid {
		d.EndDate.String = core.CleanString(d.EndDate.String)
		d.EndDate.Valid = d.EndDate.String != ""
	}
	d.Status = core.CleanString(d.Status, true /* lower */)
}

func (d *SessionDraft) Clean() {
	d.Title = core.CleanString(d.Title)
	d.Description = core.CleanString(d.Description)
	d.Instructor = core.CleanString(d.Instructor)
	d.DeliveryMode = core.CleanString(d.DeliveryMode, true /* lower */)
	d.Status = core.CleanString(d.Status, true /* lower */)
	cleanNullString(&d.MeetingLink)
	cleanNullString(&d.Venue)
}

func (d *AssignmentDraft) Clean() {
	d.Title = core.CleanString(d.Title)
	d.Description = core.CleanString(d.Description)
	d.ReferenceMaterial = core.CleanString(d.ReferenceMaterial)
	d.ResponseType = core.CleanString(d.ResponseType, true /* lower */)
	d.Status = core.CleanString(d.Status, true /* lower */)
}

func (d *StudentDraft) Clean() {
	d.Name = core.CleanString(d.Name)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.Phone = core.CleanString(d.Phone)
}

func (d *InstructorDraft) Clean() {
	d.Name = core.CleanString(d.Name)
	d.Email = core.CleanString(d.Email, true /* lower */)
}

func (d *AnnouncementDraft) Clean() {
	d.AudienceType = core.CleanString(d.AudienceType, true /* lower */)
	d.Title = core.CleanString(d.Title)
	d.MessageBody = core.CleanString(d.MessageBody)
	if d.AudienceType == AudienceGlobal {
		d.StreamID = null.Int64{}
	}
}

func (d *MarkAttendance) Clean() {
	for i := range d.Attendance {
		d.Attendance[i].Status = core.CleanString(d.Attendance[i].Status, true /* lower */)
	}
}

func (d *AttendanceStatus) Clean() { d.Status = core.CleanString(d.Status, true /* lower */) }

func (d *SubmissionGrade) Clean() {
	d.GradeFeedback = core.CleanString(d.GradeFeedback)
	if d.Status = core.CleanString(d.Status, true /* lower */); d.Status == "" {
		d.Status = GradeGraded
	}
}

func (d *BulkGrade) Clean() {
	for i := range d.Grades {
		d.Grades[i].GradeFeedback = core.CleanString(d.Grades[i].GradeFeedback)
		if d.Grades[i].Status = core.CleanString(d.Grades[i].Status, true /* lower */); d.Grades[i].Status == "" {
			d.Grades[i].Status = GradeGraded
		}
	}
}

func (d *Credentials) Clean() { d.Email = core.CleanString(d.Email, true /* lower */) }

func cleanNullString(s *null.String) {
	if !s.Valid {
		return
	}
	s.String = core.CleanString(s.String)
	s.Valid = s.String != ""
}
