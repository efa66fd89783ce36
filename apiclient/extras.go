package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/academy"
)

// Login exchanges credentials for a bearer token. The token is not stored: that is the caller's concern.
func (c *Client) Login(ctx context.Context, creds academy.Credentials) (academy.LoginResult, error) {
	var res academy.LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &res); err != nil {
		return res, errors.Wrap(err, "logging in")
	}
	if res.Token == "" {
		return res, &Error{Kind: KindRejected, Message: "login response has no token"}
	}
	return res, nil
}

// Me returns the user owning the current token.
func (c *Client) Me(ctx context.Context) (academy.User, error) {
	var usr academy.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &usr)
	return usr, errors.Wrap(err, "getting profile")
}

// CohortRoster lists the students enrolled in a cohort.
func (c *Client) CohortRoster(ctx context.Context, cohortID academy.ID) ([]academy.RosterEntry, error) {
	roster := make([]academy.RosterEntry, 0)
	query := url.Values{FilterCohort: {cohortID.String()}}
	if err := c.do(ctx, http.MethodGet, "/admin/attendance/students", query, nil, &roster); err != nil {
		return nil, errors.Wrap(err, "listing cohort roster")
	}
	return roster, nil
}

// AttendanceSheet returns the attendance records and summary of a session.
func (c *Client) AttendanceSheet(ctx context.Context, sessionID academy.ID) (academy.SessionAttendance, error) {
	var sheet academy.SessionAttendance
	err := c.do(ctx, http.MethodGet, attendancePath(sessionID), nil, nil, &sheet)
	return sheet, errors.Wrap(err, "getting attendance sheet")
}

func (c *Client) MarkAttendance(ctx context.Context, mark academy.MarkAttendance) error {
	return errors.Wrap(c.do(ctx, http.MethodPost, "/admin/attendance/mark", nil, mark, nil), "marking attendance")
}

func (c *Client) UpdateAttendance(ctx context.Context, sessionID, userID academy.ID, status academy.AttendanceStatus) error {
	path := attendancePath(sessionID) + "/user/" + userID.String()
	return errors.Wrap(c.do(ctx, http.MethodPut, path, nil, status, nil), "updating attendance")
}

func (c *Client) DeleteAttendance(ctx context.Context, sessionID, userID academy.ID) error {
	path := attendancePath(sessionID) + "/user/" + userID.String()
	return errors.Wrap(c.do(ctx, http.MethodDelete, path, nil, nil, nil), "deleting attendance")
}

// ClearSessionAttendance deletes every attendance record of a session.
func (c *Client) ClearSessionAttendance(ctx context.Context, sessionID academy.ID) error {
	path := attendancePath(sessionID) + "/all"
	return errors.Wrap(c.do(ctx, http.MethodDelete, path, nil, nil, nil), "clearing session attendance")
}

// GradeBulk grades many submissions of an assignment and returns the number of grades saved.
func (c *Client) GradeBulk(ctx context.Context, assignmentID academy.ID, grades academy.BulkGrade) (int, error) {
	var res academy.GradeBulkResult
	path := "/admin/assignments/" + assignmentID.String() + "/grade-bulk"
	if err := c.do(ctx, http.MethodPost, path, nil, grades, &res); err != nil {
		return 0, errors.Wrap(err, "grading submissions")
	}
	if res.GradedCount == 0 {
		res.GradedCount = len(grades.Grades)
	}
	return res.GradedCount, nil
}

func (c *Client) GradeSubmission(ctx context.Context, submissionID academy.ID, grade academy.SubmissionGrade) error {
	path := "/submissions/" + submissionID.String() + "/grade"
	return errors.Wrap(c.do(ctx, http.MethodPost, path, nil, grade, nil), "grading submission")
}

func (c *Client) RevokeCertificate(ctx context.Context, certificateID academy.ID) error {
	body := academy.RevokeCertificate{CertificateID: certificateID}
	return errors.Wrap(c.do(ctx, http.MethodPost, "/admin/certificates/revoke", nil, body, nil), "revoking certificate")
}

func attendancePath(sessionID academy.ID) string {
	return "/admin/attendance/session/" + sessionID.String()
}
