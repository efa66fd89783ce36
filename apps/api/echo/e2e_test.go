package echoapi

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/apiclient"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
	"github.com/trezcool/academia/resourcelist"
	notifysvc "github.com/trezcool/academia/services/notify"
	"github.com/trezcool/academia/session"
	"github.com/trezcool/academia/tests"
)

type console struct {
	client *apiclient.Client
	store  *session.Store
	sink   *notifysvc.Recorder
}

func newConsole(t *testing.T, env testEnv) console {
	t.Helper()
	srv := httptest.NewServer(env.server)
	t.Cleanup(srv.Close)

	store := session.NewStore(filepath.Join(t.TempDir(), "credentials.yml"), testutil.NopLogger{})
	require.NoError(t, store.Init())
	client := apiclient.New(core.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, store)
	return console{client: client, store: store, sink: new(notifysvc.Recorder)}
}

func (c console) login(t *testing.T, email, pwd string) {
	t.Helper()
	res, err := c.client.Login(context.Background(), academy.Credentials{Email: email, Password: pwd})
	require.NoError(t, err)
	require.NoError(t, c.store.SetToken(res.Token, res.User))
}

func streamOptions(client *apiclient.Client) resourcelist.OptionsFunc {
	return func(ctx context.Context, _ string) ([]resourcelist.Option, error) {
		streams, err := client.Streams().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		opts := make([]resourcelist.Option, 0, len(streams))
		for _, st := range streams {
			opts = append(opts, resourcelist.Option{ID: st.ID.String(), Label: st.Title})
		}
		return opts, nil
	}
}

func TestConsole_streamsAndCohorts(t *testing.T) {
	env := setup(t)
	c := newConsole(t, env)
	c.login(t, "admin@academia.test", "s3cret")
	ctx := context.Background()
	validate, translator := academy.NewValidator()

	streams, err := resourcelist.New(resourcelist.Config[academy.Stream, academy.StreamDraft]{
		Noun:       "stream",
		Collection: c.client.Streams(),
		Validate:   validate,
		Translator: translator,
		Sink:       c.sink,
	})
	require.NoError(t, err)
	streams.Start(ctx)
	streams.Wait()
	assert.Equal(t, resourcelist.ListReady, streams.State().Status)
	assert.Empty(t, streams.State().Items)

	// invalid drafts never reach the server
	_, err = streams.Create(ctx, academy.StreamDraft{Title: " "})
	assert.True(t, core.IsValidationError(err))
	all, _ := env.db.ListStreams()
	assert.Empty(t, all)

	streamID, err := streams.Create(ctx, academy.StreamDraft{Title: "Data Science", DurationWeeks: 16})
	require.NoError(t, err)
	_, err = streams.Create(ctx, academy.StreamDraft{Title: "Software Engineering", DurationWeeks: 24})
	require.NoError(t, err)
	st := streams.State()
	require.Len(t, st.Items, 2)
	assert.Equal(t, "Data Science", st.Items[0].Title)

	cohorts, err := resourcelist.New(resourcelist.Config[academy.Cohort, academy.CohortDraft]{
		Noun:       "cohort",
		Collection: c.client.Cohorts(),
		Slots:      []resourcelist.Slot{{Key: apiclient.FilterStream, Label: "stream", Options: streamOptions(c.client)}},
		Validate:   validate,
		Translator: translator,
		Sink:       c.sink,
	})
	require.NoError(t, err)
	cohorts.Start(ctx)
	cohorts.Wait()
	cs := cohorts.State()
	require.Len(t, cs.Slots[0].Options, 2)
	assert.False(t, cs.Complete())

	require.NoError(t, cohorts.SetFilter(ctx, 0, streamID))
	cohorts.Wait()
	assert.Equal(t, "Data Science", cohorts.State().Label(0))

	_, err = cohorts.Create(ctx, academy.CohortDraft{
		CohortName:       "DS 1",
		StreamID:         mustID(t, streamID),
		LeadInstructorID: null.Int64From(int64(env.instructor.ID)),
		StartDate:        "2024-01-08",
	})
	require.NoError(t, err)
	cs = cohorts.State()
	require.Len(t, cs.Items, 1)
	assert.Equal(t, "Data Science", cs.Items[0].StreamTitle)
	assert.Equal(t, map[string]string{apiclient.FilterStream: streamID}, cohorts.Filters())

	// the stream still has a cohort: the server refuses and the list is untouched
	err = streams.Delete(ctx, streamID)
	var mErr *resourcelist.MutationError
	require.ErrorAs(t, err, &mErr)
	assert.False(t, mErr.NotFound())
	assert.Len(t, streams.State().Items, 2)

	err = streams.Delete(ctx, "99")
	require.ErrorAs(t, err, &mErr)
	assert.True(t, mErr.NotFound())

	require.NoError(t, cohorts.Delete(ctx, cs.Items[0].ResourceID()))
	assert.Empty(t, cohorts.State().Items)
	require.NoError(t, streams.Delete(ctx, streamID))
	assert.Len(t, streams.State().Items, 1)

	assert.Equal(t, []string{
		"failed to delete stream " + streamID + ": stream " + streamID + " still has cohorts (status 409)",
		"failed to delete stream 99: stream 99 not found",
	}, c.sink.Errors())
	assert.Equal(t, []string{
		"stream created",
		"stream created",
		"cohort created",
		"cohort " + cs.Items[0].ResourceID() + " deleted",
		"stream " + streamID + " deleted",
	}, c.sink.Successes())
}

func TestConsole_attendance(t *testing.T) {
	env := setup(t)
	c := newConsole(t, env)
	c.login(t, "grace@academia.test", "grace-pwd")
	ctx := context.Background()

	st, _ := env.db.CreateStream(academy.StreamDraft{Title: "SE", DurationWeeks: 12})
	co, _ := env.db.CreateCohort(academy.CohortDraft{
		CohortName: "SE 1", StreamID: st.ID, LeadInstructorID: null.Int64From(int64(env.instructor.ID)), StartDate: "2024-01-08",
	})
	s, _ := env.db.CreateSession(academy.SessionDraft{CohortID: co.ID, Title: "Intro", DeliveryMode: "online", StartsAt: time.Now()})
	ada, err := env.db.CreateStudent(academy.StudentDraft{Name: "Ada", Email: "ada@academia.test", CohortID: co.ID})
	require.NoError(t, err)

	// instructors may not use the admin API
	_, err = c.client.Streams().List(ctx, nil)
	assert.True(t, apiclient.IsTransport(err))
	assert.NotEmpty(t, c.store.Token())

	c.store.Invalidate(c.store.Token())
	c.login(t, "admin@academia.test", "s3cret")

	sheet, err := resourcelist.New(resourcelist.Config[academy.AttendanceRecord, apiclient.NoDraft]{
		Noun:       "attendance record",
		Collection: c.client.SessionAttendance(),
		Filters:    map[string]string{apiclient.FilterSession: s.ID.String()},
		Sink:       c.sink,
	})
	require.NoError(t, err)
	sheet.Start(ctx)
	sheet.Wait()
	items := sheet.State().Items
	require.Len(t, items, 1)
	assert.False(t, items[0].IsMarked())

	err = sheet.Mutate(ctx, "mark attendance", func(ctx context.Context) error {
		return c.client.MarkAttendance(ctx, academy.MarkAttendance{
			SessionID:  s.ID,
			Attendance: []academy.AttendanceEntry{{UserID: ada.UserID, Status: academy.AttendancePresent}},
		})
	})
	require.NoError(t, err)
	items = sheet.State().Items
	require.Len(t, items, 1)
	assert.Equal(t, null.StringFrom(academy.AttendancePresent), items[0].Status)
	assert.Equal(t, []string{"mark attendance: done"}, c.sink.Successes())
}

func TestConsole_expiredSession(t *testing.T) {
	env := setup(t)
	c := newConsole(t, env)
	ctx := context.Background()

	// a token signed with another key is refused
	other := testutil.Config()
	other.SecretKey = "another-secret"
	require.NoError(t, c.store.SetToken(getToken(t, env.admin, other), env.admin))

	_, err := c.client.Streams().List(ctx, nil)
	assert.True(t, apiclient.IsUnauthorized(err))
	assert.Empty(t, c.store.Token())
	_, ok := c.store.CurrentUser()
	assert.False(t, ok)

	// without a token
	_, err = c.client.Me(ctx)
	assert.True(t, apiclient.IsUnauthorized(err))
}

func mustID(t *testing.T, s string) academy.ID {
	t.Helper()
	id, err := academy.ParseID(s)
	require.NoError(t, err)
	return id
}
