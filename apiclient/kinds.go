package apiclient

import (
	"encoding/json"
	"net/url"

	"github.com/trezcool/academia/core/academy"
)

// Filter keys
const (
	FilterStream     = "stream_id"
	FilterCohort     = "cohort_id"
	FilterSession    = "session_id"
	FilterAssignment = "assignment_id"
)

func (c *Client) Streams() *Collection[academy.Stream, academy.StreamDraft] {
	return newCollection[academy.Stream, academy.StreamDraft](c, "streams", "/admin/streams")
}

func (c *Client) Cohorts() *Collection[academy.Cohort, academy.CohortDraft] {
	col := newCollection[academy.Cohort, academy.CohortDraft](c, "cohorts", "/admin/cohorts")
	// some API versions ignore ?stream_id
	col.match = func(co academy.Cohort, filters map[string]string) bool {
		sid, ok := filters[FilterStream]
		return !ok || sid == "" || co.StreamID.String() == sid
	}
	return col
}

func (c *Client) Sessions() *Collection[academy.Session, academy.SessionDraft] {
	col := newCollection[academy.Session, academy.SessionDraft](c, "sessions", "/admin/sessions")
	// the API requires cohort_id as a query parameter on create
	col.createPath = func(d academy.SessionDraft) (string, url.Values) {
		q := url.Values{}
		if d.CohortID != 0 {
			q.Set(FilterCohort, d.CohortID.String())
		}
		return col.base, q
	}
	return col
}

func (c *Client) Assignments() *Collection[academy.Assignment, academy.AssignmentDraft] {
	return newCollection[academy.Assignment, academy.AssignmentDraft](c, "assignments", "/admin/assignments")
}

func (c *Client) Students() *Collection[academy.Student, academy.StudentDraft] {
	col := newCollection[academy.Student, academy.StudentDraft](c, "students", "/admin/students")
	col.listPath = func(filters map[string]string) (string, url.Values, error) {
		q := url.Values{}
		for k, v := range filters {
			if v != "" {
				q.Set(k, v)
			}
		}
		q.Set("include_details", "true")
		return col.base, q, nil
	}
	return col
}

// Instructors are the users with the instructor role. They are created by the platform, not the console.
func (c *Client) Instructors() *Collection[academy.User, academy.InstructorDraft] {
	col := newCollection[academy.User, academy.InstructorDraft](c, "instructors", "/admin/users")
	col.listPath = func(map[string]string) (string, url.Values, error) {
		return col.base, url.Values{"role": {academy.RoleInstructor}}, nil
	}
	col.noCreate = true
	return col
}

func (c *Client) Certificates() *Collection[academy.Certificate, academy.CertificateDraft] {
	col := newCollection[academy.Certificate, academy.CertificateDraft](c, "certificates", "/admin/certificates")
	col.createPath = func(academy.CertificateDraft) (string, url.Values) {
		return col.base + "/issue", nil
	}
	col.noUpdate = true
	return col
}

func (c *Client) Announcements() *Collection[academy.Announcement, academy.AnnouncementDraft] {
	col := newCollection[academy.Announcement, academy.AnnouncementDraft](c, "announcements", "/admin/announcements")
	col.listPath = func(map[string]string) (string, url.Values, error) {
		return col.base + "/recent", nil, nil
	}
	col.createPath = func(academy.AnnouncementDraft) (string, url.Values) {
		return col.base + "/broadcast", nil
	}
	return col
}

// SessionAttendance lists the attendance sheet of the session selected by the session_id filter.
// It is read-only: attendance is recorded through MarkAttendance & co.
func (c *Client) SessionAttendance() *Collection[academy.AttendanceRecord, NoDraft] {
	col := newCollection[academy.AttendanceRecord, NoDraft](c, "attendance", "/admin/attendance/session")
	col.listPath = requireFilter(FilterSession, func(sid string) string { return col.base + "/" + sid })
	col.decode = func(raw json.RawMessage) ([]academy.AttendanceRecord, error) {
		if len(raw) > 0 && raw[0] == '[' {
			return decodeList[academy.AttendanceRecord](raw)
		}
		var sheet academy.SessionAttendance
		if err := json.Unmarshal(raw, &sheet); err != nil {
			return nil, err
		}
		if sheet.Attendance == nil {
			return []academy.AttendanceRecord{}, nil
		}
		return sheet.Attendance, nil
	}
	col.noCreate, col.noUpdate, col.noDelete = true, true, true
	return col
}

// AssignmentGrades lists the student rows of the assignment selected by the assignment_id filter.
// It is read-only: grades are recorded through GradeBulk and GradeSubmission.
func (c *Client) AssignmentGrades() *Collection[academy.GradeRow, NoDraft] {
	col := newCollection[academy.GradeRow, NoDraft](c, "grades", "/admin/assignments")
	col.listPath = requireFilter(FilterAssignment, func(aid string) string { return col.base + "/" + aid + "/students" })
	col.noCreate, col.noUpdate, col.noDelete = true, true, true
	return col
}
