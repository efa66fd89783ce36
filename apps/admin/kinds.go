package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/trezcool/academia/apiclient"
	"github.com/trezcool/academia/core/academy"
	"github.com/trezcool/academia/resourcelist"
)

// options lists col filtered on the parent selection (under parentKey) and labels each entity.
func options[E resourcelist.Entity, D any](col resourcelist.Collection[E, D], parentKey string, label func(E) string) resourcelist.OptionsFunc {
	return func(ctx context.Context, parentID string) ([]resourcelist.Option, error) {
		var filters map[string]string
		if parentKey != "" {
			filters = map[string]string{parentKey: parentID}
		}
		items, err := col.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		opts := make([]resourcelist.Option, 0, len(items))
		for _, e := range items {
			opts = append(opts, resourcelist.Option{ID: e.ResourceID(), Label: label(e)})
		}
		return opts, nil
	}
}

// filter slots
var (
	streamSlot = slotFlag{
		flag: "stream", key: apiclient.FilterStream, label: "stream",
		options: func(c *apiclient.Client) resourcelist.OptionsFunc {
			return options[academy.Stream, academy.StreamDraft](c.Streams(), "", func(s academy.Stream) string { return s.Title })
		},
	}
	cohortSlot = slotFlag{
		flag: "cohort", key: apiclient.FilterCohort, label: "cohort",
		options: func(c *apiclient.Client) resourcelist.OptionsFunc {
			return options[academy.Cohort, academy.CohortDraft](c.Cohorts(), apiclient.FilterStream, func(co academy.Cohort) string { return co.CohortName })
		},
	}
	sessionSlot = slotFlag{
		flag: "session", key: apiclient.FilterSession, label: "session",
		options: func(c *apiclient.Client) resourcelist.OptionsFunc {
			return options[academy.Session, academy.SessionDraft](c.Sessions(), apiclient.FilterCohort, func(s academy.Session) string {
				return fmt.Sprintf("%s (%s)", s.Title, fmtTime(s.StartsAt))
			})
		},
	}
	assignmentSlot = slotFlag{
		flag: "assignment", key: apiclient.FilterAssignment, label: "assignment",
		options: func(c *apiclient.Client) resourcelist.OptionsFunc {
			return options[academy.Assignment, academy.AssignmentDraft](c.Assignments(), apiclient.FilterCohort, func(a academy.Assignment) string { return a.Title })
		},
	}
)

var streamsKind = kind[academy.Stream, academy.StreamDraft]{
	use: "streams", noun: "stream", aliases: []string{"stream"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Stream, academy.StreamDraft] {
		return c.Streams()
	},
	header: table.Row{"ID", "Title", "Weeks", "Created"},
	row: func(s academy.Stream) table.Row {
		return table.Row{s.ID, s.Title, s.DurationWeeks, fmtTime(s.CreatedAt)}
	},
	ops: opCRUD,
}

var cohortsKind = kind[academy.Cohort, academy.CohortDraft]{
	use: "cohorts", noun: "cohort", aliases: []string{"cohort"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Cohort, academy.CohortDraft] {
		return c.Cohorts()
	},
	slots:  []slotFlag{streamSlot},
	header: table.Row{"ID", "Name", "Stream", "Lead", "Start", "End", "Status"},
	row: func(co academy.Cohort) table.Row {
		return table.Row{co.ID, co.CohortName, co.StreamTitle, fmtNullInt(co.LeadInstructorID), co.StartDate, co.EndDate.String, co.Status}
	},
	ops: opCRUD,
}

var sessionsKind = kind[academy.Session, academy.SessionDraft]{
	use: "sessions", noun: "session", aliases: []string{"session"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Session, academy.SessionDraft] {
		return c.Sessions()
	},
	slots:  []slotFlag{streamSlot, cohortSlot},
	header: table.Row{"ID", "Title", "Instructor", "Mode", "Starts", "Where", "Status"},
	row: func(s academy.Session) table.Row {
		where := s.Venue.String
		if s.DeliveryMode == academy.DeliveryOnline {
			where = s.MeetingLink.String
		}
		return table.Row{s.ID, s.Title, s.Instructor, s.DeliveryMode, fmtTime(s.StartsAt), where, s.Status}
	},
	ops: opCRUD,
}

var assignmentsKind = kind[academy.Assignment, academy.AssignmentDraft]{
	use: "assignments", noun: "assignment", aliases: []string{"assignment"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Assignment, academy.AssignmentDraft] {
		return c.Assignments()
	},
	slots:  []slotFlag{streamSlot, cohortSlot},
	header: table.Row{"ID", "Title", "Response", "Due", "Max score", "Status"},
	row: func(a academy.Assignment) table.Row {
		return table.Row{a.ID, a.Title, a.ResponseType, fmtTime(a.DueAt), a.MaxScore, a.Status}
	},
	ops: opCRUD,
}

var studentsKind = kind[academy.Student, academy.StudentDraft]{
	use: "students", noun: "student", aliases: []string{"student"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Student, academy.StudentDraft] {
		return c.Students()
	},
	slots:  []slotFlag{streamSlot, cohortSlot},
	header: table.Row{"ID", "User", "Name", "Email", "Phone", "Cohort", "Enrolled"},
	row: func(s academy.Student) table.Row {
		return table.Row{s.ID, s.UserID, s.Name, s.Email, s.Phone, s.CohortName, fmtTime(s.EnrolledAt)}
	},
	ops: opCRUD,
}

// instructors are created by the platform
var instructorsKind = kind[academy.User, academy.InstructorDraft]{
	use: "instructors", noun: "instructor", aliases: []string{"instructor"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.User, academy.InstructorDraft] {
		return c.Instructors()
	},
	header: table.Row{"ID", "Name", "Email"},
	row: func(u academy.User) table.Row {
		return table.Row{u.ID, u.Name, u.Email}
	},
	ops: opUpdate | opDelete,
}

var certificatesKind = kind[academy.Certificate, academy.CertificateDraft]{
	use: "certificates", noun: "certificate", aliases: []string{"certificate", "certs"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Certificate, academy.CertificateDraft] {
		return c.Certificates()
	},
	header: table.Row{"ID", "Number", "User", "Enrollment", "Issued", "Revoked"},
	row: func(c academy.Certificate) table.Row {
		revoked := ""
		if c.Revoked {
			revoked = "yes " + fmtNullTime(c.RevokedAt)
		}
		return table.Row{c.ID, c.CertificateNumber, c.UserID, c.EnrollmentID, fmtTime(c.IssuedAt), revoked}
	},
	ops: opCreate | opDelete,
}

var announcementsKind = kind[academy.Announcement, academy.AnnouncementDraft]{
	use: "announcements", noun: "announcement", aliases: []string{"announcement"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.Announcement, academy.AnnouncementDraft] {
		return c.Announcements()
	},
	header: table.Row{"ID", "Audience", "Stream", "Title", "Created"},
	row: func(a academy.Announcement) table.Row {
		return table.Row{a.ID, a.AudienceType, fmtNullInt(a.StreamID), a.Title, fmtTime(a.CreatedAt)}
	},
	ops: opCRUD,
}

var attendanceKind = kind[academy.AttendanceRecord, apiclient.NoDraft]{
	use: "attendance", noun: "attendance record",
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.AttendanceRecord, apiclient.NoDraft] {
		return c.SessionAttendance()
	},
	slots:  []slotFlag{streamSlot, cohortSlot, sessionSlot},
	header: table.Row{"User", "Name", "Email", "Status"},
	row: func(r academy.AttendanceRecord) table.Row {
		status := "-"
		if r.IsMarked() {
			status = r.Status.String
		}
		return table.Row{r.UserID, r.Name, r.Email, status}
	},
}

var gradesKind = kind[academy.GradeRow, apiclient.NoDraft]{
	use: "grades", noun: "grade", aliases: []string{"grade"},
	collection: func(c *apiclient.Client) resourcelist.Collection[academy.GradeRow, apiclient.NoDraft] {
		return c.AssignmentGrades()
	},
	slots:  []slotFlag{streamSlot, cohortSlot, assignmentSlot},
	header: table.Row{"User", "Name", "Submission", "Status", "Submitted", "Score", "Feedback"},
	row: func(r academy.GradeRow) table.Row {
		return table.Row{r.UserID, r.Name, fmtNullInt(r.SubmissionID), r.SubmissionStatus.String, fmtNullTime(r.SubmittedAt), fmtNullFloat(r.GradeScore), r.GradeFeedback}
	},
}
