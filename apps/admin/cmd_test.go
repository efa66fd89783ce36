package main

import (
	"bufio"
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/apiclient"
	echoapi "github.com/trezcool/academia/apps/api/echo"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
	"github.com/trezcool/academia/resourcelist"
	emailsvc "github.com/trezcool/academia/services/email"
	notifysvc "github.com/trezcool/academia/services/notify"
	"github.com/trezcool/academia/session"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	"github.com/trezcool/academia/tests"
)

type testEnv struct {
	cli     *commandLine
	out     *bytes.Buffer
	notes   *bytes.Buffer
	db      *inmemdb.DB
	academy testutil.Academy
}

func setup(t *testing.T) testEnv {
	t.Helper()
	conf := testutil.Config()
	db := inmemdb.Open()
	_, err := inmemdb.Seed(db, conf)
	require.NoError(t, err)
	fixture := testutil.SeedAcademy(t, db)

	validate, translator := academy.NewValidator()
	srv := httptest.NewServer(echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         testutil.NopLogger{},
		Repo:           db,
		MailSvc:        emailsvc.NewConsoleServiceMock(conf),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	}))
	t.Cleanup(srv.Close)
	conf.API.BaseURL = srv.URL
	conf.CredentialsFile = filepath.Join(t.TempDir(), "credentials.yml")

	store := session.NewStore(conf.CredentialsFile, testutil.NopLogger{})
	require.NoError(t, store.Init())

	out, notes := new(bytes.Buffer), new(bytes.Buffer)
	return testEnv{
		cli: &commandLine{
			conf:       conf,
			store:      store,
			validate:   validate,
			translator: translator,
			logger:     testutil.NopLogger{},
			sink:       notifysvc.NewTerminalSink(notes, false),
			out:        out,
		},
		out:     out,
		notes:   notes,
		db:      db,
		academy: fixture,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	input      string   // stdin
	pwd        string
	wantErr    error
	wantErrStr string
	wantFields []string // fields of a *core.ValidationError
	reported   bool     // the error was notified
	wantOut    []string
	wantNotes  []string
}

func (env testEnv) run(t *testing.T, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.out.Reset()
			env.notes.Reset()
			env.cli.in = bufio.NewReader(strings.NewReader(tt.input))
			readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.pwd), nil }

			err := env.cli.run(append([]string{"academyctl"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			case tt.wantFields != nil:
				var vErr *core.ValidationError
				require.ErrorAs(t, err, &vErr)
				flds := make([]string, 0, len(vErr.Fields))
				for _, f := range vErr.Fields {
					flds = append(flds, f.Field)
				}
				assert.Equal(t, tt.wantFields, flds)
			case tt.reported:
				assert.True(t, reported(err), "error %v was not notified", err)
			default:
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, env.out.String(), want)
			}
			for _, want := range tt.wantNotes {
				assert.Contains(t, env.notes.String(), want)
			}
		})
	}
}

func (env testEnv) login(t *testing.T) {
	t.Helper()
	env.run(t, []cliTest{{
		name:    "login",
		args:    []string{"login", "-e", testutil.AdminEmail},
		pwd:     testutil.AdminPassword,
		wantOut: []string{"logged in as Admin <admin@academia.test> (admin)"},
	}})
}

func Test_commandLine_auth(t *testing.T) {
	env := setup(t)

	env.run(t, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "not logged in", args: []string{"streams", "list"}, wantErr: errNotLoggedIn},
		{name: "invalid credentials", args: []string{"login", "-e", "nope"}, wantFields: []string{"email", "password"}},
		{name: "wrong password", args: []string{"login", "-e", testutil.AdminEmail}, pwd: "lol", wantErrStr: "logging in: invalid email or password"},
		{
			name:    "prompted email",
			args:    []string{"login"},
			input:   " Admin@Academia.test \n",
			pwd:     testutil.AdminPassword,
			wantOut: []string{"Email: ", "Password: ", "logged in as Admin <admin@academia.test> (admin)"},
		},
		{name: "whoami", args: []string{"whoami"}, wantOut: []string{"Admin <admin@academia.test> (admin)"}},
		{name: "logout", args: []string{"logout"}, wantOut: []string{"logged out"}},
		{name: "logged out", args: []string{"whoami"}, wantErr: errNotLoggedIn},
	})
	assert.Empty(t, env.cli.store.Token())
}

func Test_commandLine_streams(t *testing.T) {
	env := setup(t)
	env.login(t)

	draft := filepath.Join(t.TempDir(), "stream.yaml")
	require.NoError(t, os.WriteFile(draft, []byte("title: Data Science\nduration_weeks: 12\n"), 0o600))

	env.run(t, []cliTest{
		{name: "list", args: []string{"streams", "ls"}, wantOut: []string{"Software Engineering", "(1 rows)"}},
		{name: "create: invalid draft", args: []string{"streams", "create", "-d", `{"title": " "}`}, wantErrStr: "title: this field cannot be blank; duration_weeks: this field is required"},
		{
			name:      "create from file",
			args:      []string{"streams", "create", "--data", "@" + draft},
			wantOut:   []string{"stream ID: 2", "Data Science", "(2 rows)"},
			wantNotes: []string{"✔ stream created"},
		},
		{
			name:      "update",
			args:      []string{"streams", "update", "2", "-d", "-"},
			input:     `{"title": "Data Engineering", "duration_weeks": 16}`,
			wantOut:   []string{"Data Engineering", "16"},
			wantNotes: []string{"✔ stream 2 updated"},
		},
		{
			name:       "update missing",
			args:       []string{"streams", "update", "99", "-d", `{"title": "Nope", "duration_weeks": 1}`},
			wantErrStr: "failed to update stream 99: stream 99 not found",
			wantNotes:  []string{"✘ failed to update stream 99: stream 99 not found"},
		},
		{name: "delete aborted", args: []string{"streams", "rm", "2"}, input: "n\n", wantOut: []string{"Delete stream 2? [y/N] ", "aborted"}},
		{
			name:       "delete stream with cohorts",
			args:       []string{"streams", "delete", "1", "--yes"},
			wantErrStr: "failed to delete stream 1: stream 1 still has cohorts (status 409)",
		},
		{
			name:      "delete",
			args:      []string{"streams", "delete", "2"},
			input:     "y\n",
			wantOut:   []string{"(1 rows)"},
			wantNotes: []string{"✔ stream 2 deleted"},
		},
	})

	streams, err := env.db.ListStreams()
	require.NoError(t, err)
	assert.Len(t, streams, 1)
}

func Test_commandLine_refreshAfterMutation(t *testing.T) {
	env := setup(t)
	env.login(t)
	lead := env.academy.Instructor.ID.String()
	cohort := func(name string) string {
		return `{"cohort_name": "` + name + `", "stream_id": 1, "lead_instructor_id": ` + lead + `, "start_date": "2025-01-06"}`
	}

	env.run(t, []cliTest{
		{
			name:      "create with parent flag",
			args:      []string{"cohorts", "create", "--stream", "1", "-d", cohort("SE 2025")},
			wantOut:   []string{"cohort ID: 2", "SE 2024", "SE 2025", "(2 rows)"},
			wantNotes: []string{"✔ cohort created"},
		},
		{
			name:    "create with parent from draft",
			args:    []string{"cohorts", "create", "-d", cohort("SE 2026")},
			wantOut: []string{"cohort ID: 3", "SE 2026", "(3 rows)"},
		},
		{
			name:       "invalid parent",
			args:       []string{"cohorts", "create", "--stream", "x", "-d", cohort("SE 2027")},
			wantErrStr: `--stream: invalid ID "x"`,
		},
		{
			name:      "update with parent from draft",
			args:      []string{"sessions", "update", "1", "-d", `{"cohort_id": 1, "title": "Intro to Go", "delivery_mode": "online", "starts_at": "2024-01-08T09:00:00Z"}`},
			wantOut:   []string{"Intro to Go", "(1 rows)"},
			wantNotes: []string{"✔ session 1 updated"},
		},
		{
			name:      "delete with parent flag",
			args:      []string{"sessions", "delete", "1", "--cohort", "1", "-y"},
			wantOut:   []string{"(0 rows)"},
			wantNotes: []string{"✔ session 1 deleted"},
		},
		{
			name:      "delete without parent",
			args:      []string{"cohorts", "delete", "3", "-y"},
			wantOut:   []string{"SE 2024", "SE 2025", "(2 rows)"},
			wantNotes: []string{"✔ cohort 3 deleted"},
		},
	})
}

func Test_commandLine_cascadingFilters(t *testing.T) {
	env := setup(t)
	env.login(t)

	env.run(t, []cliTest{
		{name: "no filter", args: []string{"sessions", "list"}, wantOut: []string{"select a stream with --stream:", "Software Engineering"}},
		{name: "stream by name", args: []string{"sessions", "list", "--stream", "software engineering"}, wantOut: []string{"select a cohort with --cohort:", "SE 2024"}},
		{name: "complete chain", args: []string{"sessions", "list", "--stream", "1", "--cohort", "SE 2024"}, wantOut: []string{"Intro", "online", "(1 rows)"}},
		{name: "unknown stream", args: []string{"sessions", "list", "--stream", "9"}, wantErrStr: `unknown stream "9"`},
		{name: "skipped filter", args: []string{"students", "list", "--cohort", "1"}, wantErr: resourcelist.ErrSlotDisabled},
		{name: "students", args: []string{"students", "list", "--stream", "1", "--cohort", "1"}, wantOut: []string{"ada@academia.test", "(1 rows)"}},
		{name: "cohorts", args: []string{"cohorts", "list", "--stream", "1"}, wantOut: []string{"SE 2024", "Software Engineering"}},
	})
}

func Test_commandLine_attendance(t *testing.T) {
	env := setup(t)
	env.login(t)
	ada := env.academy.Ada.UserID.String()

	env.run(t, []cliTest{
		{name: "roster", args: []string{"attendance", "roster", "--cohort", "1"}, wantOut: []string{"Ada", "(1 rows)"}},
		{name: "unmarked", args: []string{"attendance", "list", "--stream", "1", "--cohort", "1", "--session", "1"}, wantOut: []string{"Ada", "-"}},
		{name: "mark: invalid session", args: []string{"attendance", "mark", ada, "--session", "lol"}, wantErrStr: `--session: invalid ID "lol"`},
		{name: "mark: invalid status", args: []string{"attendance", "mark", ada, "--session", "1", "--status", "sick"}, wantFields: []string{"status"}},
		{
			name:      "mark",
			args:      []string{"attendance", "mark", ada, "--session", "1", "--status", "late"},
			wantOut:   []string{"late", "(1 rows)"},
			wantNotes: []string{"✔ mark attendance: done"},
		},
		{name: "summary", args: []string{"attendance", "summary", "--session", "1"}, wantOut: []string{"UNMARKED", "(1 rows)"}},
		{name: "set", args: []string{"attendance", "set", ada, "--session", "1", "--status", "absent"}, wantOut: []string{"absent"}, wantNotes: []string{"✔ update attendance: done"}},
		{name: "clear aborted", args: []string{"attendance", "clear", "--session", "1"}, input: "\n", wantOut: []string{"aborted"}},
		{name: "clear", args: []string{"attendance", "clear", "--session", "1", "-y"}, wantNotes: []string{"✔ clear attendance: done"}},
		{
			name:       "unset unmarked",
			args:       []string{"attendance", "unset", ada, "--session", "1"},
			wantErrStr: "failed to delete attendance: attendance record of user " + ada + " not found",
		},
	})
}

func Test_commandLine_grades(t *testing.T) {
	env := setup(t)
	env.login(t)
	a := env.academy
	subID, err := env.db.Submit(a.Assignment.ID, a.Ada.UserID)
	require.NoError(t, err)
	grades := `{"grades": [{"user_id": ` + a.Ada.UserID.String() + `, "grade_score": %s}]}`

	env.run(t, []cliTest{
		{name: "list", args: []string{"grades", "list", "--stream", "1", "--cohort", "1", "--assignment", "Hello world"}, wantOut: []string{"Ada", "submitted"}},
		{name: "bulk: max score exceeded", args: []string{"grades", "bulk", "--assignment", "1", "-d", strings.Replace(grades, "%s", "25", 1)}, reported: true, wantNotes: []string{"score cannot exceed the assignment's max score"}},
		{name: "bulk", args: []string{"grades", "bulk", "--assignment", "1", "-d", strings.Replace(grades, "%s", "18", 1)}, wantOut: []string{"18", "1 submissions graded"}, wantNotes: []string{"✔ grade submissions: done"}},
		{
			name:      "set",
			args:      []string{"grades", "set", subID.String(), "--assignment", "1", "--score", "19", "--feedback", "nice"},
			wantOut:   []string{"19", "nice", "graded"},
			wantNotes: []string{"✔ grade submission " + subID.String() + ": done"},
		},
		{name: "set: missing score", args: []string{"grades", "set", subID.String(), "--assignment", "1"}, wantErrStr: `required flag(s) "score" not set`},
	})
}

func Test_commandLine_certificates(t *testing.T) {
	env := setup(t)
	env.login(t)
	a := env.academy
	draft := `{"user_id": ` + a.Ada.UserID.String() + `, "enrollment_id": ` + a.Ada.EnrollmentID.String() + `}`

	env.run(t, []cliTest{
		{name: "none", args: []string{"certs", "list"}, wantOut: []string{"(0 rows)"}},
		{name: "issue", args: []string{"certificates", "create", "-d", draft}, wantOut: []string{"certificate ID: 1", "(1 rows)"}, wantNotes: []string{"✔ certificate created"}},
		{name: "revoke", args: []string{"certificates", "revoke", "1"}, wantOut: []string{"yes"}, wantNotes: []string{"✔ revoke certificate 1: done"}},
		{name: "revoke again", args: []string{"certificates", "revoke", "1"}, reported: true, wantNotes: []string{"✘ failed to revoke certificate 1:"}},
		{name: "revoke: invalid ID", args: []string{"certificates", "revoke", "x"}, wantErrStr: `invalid ID "x"`},
		{name: "delete", args: []string{"certificates", "delete", "1", "-y"}, wantOut: []string{"(0 rows)"}, wantNotes: []string{"✔ certificate 1 deleted"}},
	})
}

func Test_commandLine_dashboard(t *testing.T) {
	env := setup(t)
	env.login(t)

	env.run(t, []cliTest{
		{
			name:      "announce",
			args:      []string{"announcements", "create", "-d", "audience_type: global\ntitle: Welcome\nmessage_body: Classes start on Monday\n"},
			wantNotes: []string{"✔ announcement created"},
		},
		{name: "dashboard", args: []string{"dashboard"}, wantOut: []string{"Streams", "Instructors", "Latest announcements:", "Welcome"}},
	})
}

func Test_commandLine_expiredSession(t *testing.T) {
	env := setup(t)
	require.NoError(t, env.cli.store.SetToken("not-a-jwt", academy.User{Name: "Admin"}))

	env.cli.out = new(bytes.Buffer)
	err := env.cli.run([]string{"academyctl", "whoami"})
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.Empty(t, env.cli.store.Token())
}

func Test_decodeDraft(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		stdin   string
		want    academy.CohortDraft
		wantErr string
	}{
		{
			name: "json",
			data: `{"cohort_name": "SE", "stream_id": 1, "lead_instructor_id": 2, "start_date": "2024-01-08"}`,
			want: academy.CohortDraft{CohortName: "SE", StreamID: 1, LeadInstructorID: null.Int64From(2), StartDate: "2024-01-08"},
		},
		{
			name:  "yaml from stdin with unquoted dates",
			data:  "-",
			stdin: "cohort_name: SE\nstream_id: 1\nlead_instructor_id: 2\nstart_date: 2024-01-08\nend_date: 2024-06-28\n",
			want: academy.CohortDraft{
				CohortName: "SE", StreamID: 1, LeadInstructorID: null.Int64From(2), StartDate: "2024-01-08", EndDate: null.StringFrom("2024-06-28"),
			},
		},
		{name: "empty", data: "", wantErr: "empty draft"},
		{name: "not yaml", data: "{", wantErr: "parsing draft"},
		{name: "wrong type", data: `{"stream_id": "one"}`, wantErr: "decoding draft"},
		{name: "missing file", data: "@/nope.yaml", wantErr: "reading draft file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeDraft[academy.CohortDraft](strings.NewReader(tt.stdin), tt.data)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_reported(t *testing.T) {
	assert.True(t, reported(&resourcelist.FetchError{Noun: "stream", Err: errors.New("timeout")}))
	assert.True(t, reported(errors.Wrap(&resourcelist.MutationError{Op: "delete", Err: errors.New("gone")}, "streams")))
	assert.False(t, reported(errNotLoggedIn))
}
