// Package testutil holds the fixtures shared by the tests of the dev API and the console.
package testutil

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

const (
	AdminEmail    = "admin@academia.test"
	AdminPassword = "s3cret"
)

type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func Config() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Academia",
		SecretKey: "test-secret",
		API:       core.APIConfig{Timeout: 5 * time.Second},
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Seed:      core.SeedConfig{AdminName: "Admin", AdminEmail: AdminEmail, AdminPassword: AdminPassword},
	}
}

func CreateUser(t *testing.T, repo academy.Repository, name, email, pwd, role string) academy.User {
	t.Helper()
	usr := academy.User{Name: name, Email: email, Role: role, IsAdmin: role == academy.RoleAdmin}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Academy is one stream with one cohort led by Grace, holding a session, an assignment and student Ada.
type Academy struct {
	Instructor academy.User
	Stream     academy.Stream
	Cohort     academy.Cohort
	Session    academy.Session
	Assignment academy.Assignment
	Ada        academy.Student
}

func SeedAcademy(t *testing.T, repo academy.Repository) Academy {
	t.Helper()
	var (
		a   Academy
		err error
	)
	fail := func(what string) {
		if err != nil {
			t.Fatalf("SeedAcademy() failed to create %s: %v", what, err)
		}
	}

	a.Instructor = CreateUser(t, repo, "Grace", "grace@academia.test", "grace-pwd", academy.RoleInstructor)
	a.Stream, err = repo.CreateStream(academy.StreamDraft{Title: "Software Engineering", DurationWeeks: 24})
	fail("stream")
	a.Cohort, err = repo.CreateCohort(academy.CohortDraft{
		CohortName:       "SE 2024",
		StreamID:         a.Stream.ID,
		LeadInstructorID: null.Int64From(int64(a.Instructor.ID)),
		StartDate:        "2024-01-08",
	})
	fail("cohort")
	a.Session, err = repo.CreateSession(academy.SessionDraft{
		CohortID: a.Cohort.ID, Title: "Intro", DeliveryMode: academy.DeliveryOnline, StartsAt: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
	})
	fail("session")
	a.Assignment, err = repo.CreateAssignment(academy.AssignmentDraft{
		CohortID: a.Cohort.ID, Title: "Hello world", ResponseType: "link", DueAt: time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC), MaxScore: 20,
	})
	fail("assignment")
	a.Ada, err = repo.CreateStudent(academy.StudentDraft{Name: "Ada", Email: "ada@academia.test", CohortID: a.Cohort.ID})
	fail("student")
	return a
}
