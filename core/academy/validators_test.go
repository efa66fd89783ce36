package academy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	vErr, ok := err.(*core.ValidationError)
	require.Truef(t, ok, "want *core.ValidationError, got %T: %v", err, err)
	return vErr.FieldMap()
}

func TestDraftValidation(t *testing.T) {
	validate, translator := NewValidator()
	tomorrow := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name       string
		draft      interface{}
		wantFields map[string]string
	}{
		{
			name:       "stream: blank title",
			draft:      &StreamDraft{Title: "   ", DurationWeeks: 12},
			wantFields: map[string]string{"title": "this field cannot be blank"},
		},
		{
			name:       "stream: missing duration",
			draft:      &StreamDraft{Title: "Backend"},
			wantFields: map[string]string{"duration_weeks": "this field is required"},
		},
		{name: "stream: valid", draft: &StreamDraft{Title: " Backend ", DurationWeeks: 12}},
		{
			name:  "cohort: missing required fields",
			draft: &CohortDraft{},
			wantFields: map[string]string{
				"cohort_name":        "this field cannot be blank",
				"stream_id":          "this field is required",
				"lead_instructor_id": "this field is required",
				"start_date":         "this field is required",
			},
		},
		{
			name: "cohort: end before start",
			draft: &CohortDraft{
				CohortName: "C1", StreamID: 1, LeadInstructorID: null.Int64From(2),
				StartDate: "2024-03-01", EndDate: null.StringFrom("2024-02-01"),
			},
			wantFields: map[string]string{"end_date": endDateText},
		},
		{
			name: "cohort: blank end date is dropped",
			draft: &CohortDraft{
				CohortName: "C1", StreamID: 1, LeadInstructorID: null.Int64From(2),
				StartDate: "2024-03-01", EndDate: null.StringFrom("  "),
			},
		},
		{
			name: "cohort: valid",
			draft: &CohortDraft{
				CohortName: "C1", StreamID: 1, LeadInstructorID: null.Int64From(2),
				StartDate: "2024-03-01", EndDate: null.StringFrom("2024-06-01"), Status: "Upcoming",
			},
		},
		{
			name:  "session: invalid delivery mode",
			draft: &SessionDraft{CohortID: 1, Title: "Intro", DeliveryMode: "carrier pigeon", StartsAt: tomorrow},
			wantFields: map[string]string{
				"delivery_mode": "delivery_mode must be one of [online physical]",
			},
		},
		{
			name:  "session: valid",
			draft: &SessionDraft{CohortID: 1, Title: "Intro", DeliveryMode: "ONLINE", StartsAt: tomorrow, MeetingLink: null.StringFrom("https://meet.test/abc")},
		},
		{
			name:       "assignment: missing title",
			draft:      &AssignmentDraft{CohortID: 1, ResponseType: "link", DueAt: tomorrow, MaxScore: 100},
			wantFields: map[string]string{"title": "this field cannot be blank"},
		},
		{
			name:  "assignment: valid",
			draft: &AssignmentDraft{CohortID: 1, Title: "Todo API", ResponseType: "link", DueAt: tomorrow, MaxScore: 100},
		},
		{
			name:       "student: invalid email",
			draft:      &StudentDraft{Name: "Ada", Email: "ada", CohortID: 1},
			wantFields: map[string]string{"email": "email must be a valid email address"},
		},
		{
			name:       "certificate: missing enrollment",
			draft:      &CertificateDraft{UserID: 3},
			wantFields: map[string]string{"enrollment_id": "this field is required"},
		},
		{
			name:       "announcement: stream audience requires stream",
			draft:      &AnnouncementDraft{AudienceType: "stream", Title: "Hi", MessageBody: "Hello"},
			wantFields: map[string]string{"stream_id": "this field is required"},
		},
		{
			name:  "announcement: global ignores stream",
			draft: &AnnouncementDraft{AudienceType: "global", StreamID: null.Int64From(4), Title: "Hi", MessageBody: "Hello"},
		},
		{
			name:       "attendance: invalid status",
			draft:      &AttendanceStatus{Status: "asleep"},
			wantFields: map[string]string{"status": "status must be one of [present absent late]"},
		},
		{
			name:       "attendance: empty roster",
			draft:      &MarkAttendance{SessionID: 1},
			wantFields: map[string]string{"attendance": "this field is required"},
		},
		{
			name:  "attendance: valid roster",
			draft: &MarkAttendance{SessionID: 1, Attendance: []AttendanceEntry{{UserID: 2, Status: " Present "}}},
		},
		{
			name:       "bulk grade: no grades",
			draft:      &BulkGrade{},
			wantFields: map[string]string{"grades": "this field is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateStruct(validate, translator, tt.draft)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantFields, fieldErrors(t, err))
		})
	}
}

func TestDraftClean(t *testing.T) {
	d := &AnnouncementDraft{AudienceType: " Global ", StreamID: null.Int64From(3), Title: " Hi ", MessageBody: " body "}
	d.Clean()
	assert.Equal(t, AudienceGlobal, d.AudienceType)
	assert.False(t, d.StreamID.Valid)
	assert.Equal(t, "Hi", d.Title)
	assert.Equal(t, "body", d.MessageBody)

	sd := &SessionDraft{MeetingLink: null.StringFrom("  "), Venue: null.StringFrom(" Hall A ")}
	sd.Clean()
	assert.False(t, sd.MeetingLink.Valid)
	assert.Equal(t, null.StringFrom("Hall A"), sd.Venue)
}

func TestBulkGrade_Clean(t *testing.T) {
	bg := &BulkGrade{Grades: []GradeInput{{UserID: 1, GradeScore: 80, GradeFeedback: " ok "}, {UserID: 2, Status: "Returned"}}}
	bg.Clean()
	assert.Equal(t, GradeGraded, bg.Grades[0].Status)
	assert.Equal(t, "ok", bg.Grades[0].GradeFeedback)
	assert.Equal(t, GradeReturned, bg.Grades[1].Status)
}

func TestBulkGrade_CheckMaxScore(t *testing.T) {
	bg := BulkGrade{Grades: []GradeInput{{UserID: 1, GradeScore: 80}, {UserID: 2, GradeScore: 120}}}

	err := bg.CheckMaxScore(100)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"grades.2": maxScoreText}, fieldErrors(t, err))

	assert.NoError(t, bg.CheckMaxScore(120))
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseID("lol")
	assert.Error(t, err)
}
