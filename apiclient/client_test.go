package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

type fakeCreds struct {
	mu          sync.Mutex
	token       string
	invalidated []string
}

func (f *fakeCreds) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCreds) Invalidate(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, token)
	if f.token == token {
		f.token = ""
	}
}

func (f *fakeCreds) set(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func setup(t *testing.T, handler http.HandlerFunc) (*Client, *fakeCreds) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := &fakeCreds{token: "tok-1"}
	// trailing slash on purpose: paths must not be doubled
	return New(core.APIConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, creds), creds
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_errorTaxonomy(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantKind     Kind
		wantMsg      string
		wantRejected bool
	}{
		{name: "success", status: http.StatusOK, body: `{"success":true,"data":[]}`},
		{name: "no content", status: http.StatusNoContent},
		{
			name: "rejected envelope", status: http.StatusOK, body: `{"success":false,"error":"stream has cohorts"}`,
			wantKind: KindRejected, wantMsg: "listing streams: stream has cohorts", wantRejected: true,
		},
		{
			name: "rejected envelope without message", status: http.StatusOK, body: `{"success":false}`,
			wantKind: KindRejected, wantMsg: "listing streams: request rejected", wantRejected: true,
		},
		{
			name: "not found", status: http.StatusNotFound, body: `{"success":false,"error":"stream not found"}`,
			wantKind: KindNotFound, wantMsg: "listing streams: stream not found", wantRejected: true,
		},
		{
			name: "conflict", status: http.StatusConflict, body: `{"success":false,"error":"stream has cohorts"}`,
			wantKind: KindTransport, wantMsg: "listing streams: stream has cohorts (status 409)",
		},
		{
			name: "server error", status: http.StatusInternalServerError, body: `<html>oops</html>`,
			wantKind: KindTransport, wantMsg: "listing streams: Internal Server Error (status 500)",
		},
		{
			name: "undecodable body", status: http.StatusOK, body: `not json`,
			wantKind: KindTransport, wantMsg: "listing streams: malformed response",
		},
		{
			name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false,"error":"invalid or expired jwt"}`,
			wantKind: KindUnauthorized, wantMsg: "listing streams: invalid or expired jwt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, creds := setup(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Streams().List(context.Background(), nil)
			if tt.wantKind == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantRejected, IsRejected(err))

			if tt.wantKind == KindUnauthorized {
				assert.Equal(t, []string{"tok-1"}, creds.invalidated)
				assert.Empty(t, creds.Token())
			} else {
				assert.Empty(t, creds.invalidated)
			}
		})
	}
}

func TestClient_transportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(core.APIConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)

	_, err := client.Streams().List(context.Background(), nil)
	assert.True(t, IsTransport(err))
	assert.False(t, IsRejected(err))
}

func TestClient_requestHeaders(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reqs <- r
		writeJSON(w, http.StatusOK, academy.OK([]academy.Stream{}))
	})

	_, err := client.Streams().List(context.Background(), nil)
	require.NoError(t, err)
	got := <-reqs
	assert.Equal(t, "/admin/streams", got.URL.Path)
	assert.Equal(t, "Bearer tok-1", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestClient_noTokenNoAuthHeader(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	client, creds := setup(t, func(w http.ResponseWriter, r *http.Request) {
		reqs <- r
		writeJSON(w, http.StatusOK, academy.OK(academy.LoginResult{Token: "tok-2", User: academy.User{ID: 1}}))
	})
	creds.set("")

	res, err := client.Login(context.Background(), academy.Credentials{Email: "a@test.cd", Password: "pwd"})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", res.Token)
	got := <-reqs
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestClient_invalidatedWhileInFlight(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	client, creds := setup(t, func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		writeJSON(w, http.StatusOK, academy.OK([]academy.Stream{{ID: 1, Title: "Backend"}}))
	})

	errc := make(chan error, 1)
	go func() {
		_, err := client.Streams().List(context.Background(), nil)
		errc <- err
	}()

	<-arrived
	creds.Invalidate("tok-1") // a concurrent request got a 401
	close(release)

	err := <-errc
	assert.True(t, IsUnauthorized(err), "got %v", err)
}

func TestCollection_listShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []academy.Stream
	}{
		{name: "bare array", body: `{"success":true,"data":[{"id":1,"title":"A"},{"id":2,"title":"B"}]}`, want: []academy.Stream{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}},
		{name: "items page", body: `{"success":true,"data":{"items":[{"id":3,"title":"C"}],"total":1}}`, want: []academy.Stream{{ID: 3, Title: "C"}}},
		{name: "null data", body: `{"success":true,"data":null}`, want: []academy.Stream{}},
		{name: "empty page", body: `{"success":true,"data":{}}`, want: []academy.Stream{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := client.Streams().List(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollection_paths(t *testing.T) {
	type call struct {
		method string
		uri    string
		body   string
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{method: r.Method, uri: r.URL.RequestURI(), body: string(body)})
		mu.Unlock()
		writeJSON(w, http.StatusOK, academy.OK(map[string]interface{}{"id": 9}))
	})
	ctx := context.Background()

	tests := []struct {
		name     string
		run      func() error
		wantCall call
	}{
		{
			name: "list sessions by cohort",
			run: func() error {
				_, err := client.Sessions().List(ctx, map[string]string{FilterCohort: "4"})
				return err
			},
			wantCall: call{method: http.MethodGet, uri: "/admin/sessions?cohort_id=4"},
		},
		{
			name: "create session passes cohort_id as query",
			run: func() error {
				_, err := client.Sessions().Create(ctx, academy.SessionDraft{CohortID: 4, Title: "Intro"})
				return err
			},
			wantCall: call{method: http.MethodPost, uri: "/admin/sessions?cohort_id=4"},
		},
		{
			name: "list students with details",
			run: func() error {
				_, err := client.Students().List(ctx, map[string]string{FilterCohort: "2"})
				return err
			},
			wantCall: call{method: http.MethodGet, uri: "/admin/students?cohort_id=2&include_details=true"},
		},
		{
			name: "list instructors",
			run: func() error {
				_, err := client.Instructors().List(ctx, nil)
				return err
			},
			wantCall: call{method: http.MethodGet, uri: "/admin/users?role=instructor"},
		},
		{
			name: "issue certificate",
			run: func() error {
				_, err := client.Certificates().Create(ctx, academy.CertificateDraft{UserID: 1, EnrollmentID: 2})
				return err
			},
			wantCall: call{method: http.MethodPost, uri: "/admin/certificates/issue", body: `{"user_id":1,"enrollment_id":2}`},
		},
		{
			name: "recent announcements",
			run: func() error {
				_, err := client.Announcements().List(ctx, nil)
				return err
			},
			wantCall: call{method: http.MethodGet, uri: "/admin/announcements/recent"},
		},
		{
			name: "broadcast announcement",
			run: func() error {
				_, err := client.Announcements().Create(ctx, academy.AnnouncementDraft{AudienceType: "global", Title: "T", MessageBody: "B"})
				return err
			},
			wantCall: call{method: http.MethodPost, uri: "/admin/announcements/broadcast"},
		},
		{
			name: "update stream",
			run: func() error {
				_, err := client.Streams().Update(ctx, "7", academy.StreamDraft{Title: "X", DurationWeeks: 3})
				return err
			},
			wantCall: call{method: http.MethodPut, uri: "/admin/streams/7", body: `{"title":"X","duration_weeks":3}`},
		},
		{
			name:     "delete cohort",
			run:      func() error { return client.Cohorts().Delete(ctx, "3") },
			wantCall: call{method: http.MethodDelete, uri: "/admin/cohorts/3"},
		},
		{
			name: "grades of assignment",
			run: func() error {
				_, err := client.AssignmentGrades().List(ctx, map[string]string{FilterAssignment: "5"})
				return err
			},
			wantCall: call{method: http.MethodGet, uri: "/admin/assignments/5/students"},
		},
		{
			name:     "revoke certificate",
			run:      func() error { return client.RevokeCertificate(ctx, 8) },
			wantCall: call{method: http.MethodPost, uri: "/admin/certificates/revoke", body: `{"certificate_id":8}`},
		},
		{
			name:     "clear session attendance",
			run:      func() error { return client.ClearSessionAttendance(ctx, 6) },
			wantCall: call{method: http.MethodDelete, uri: "/admin/attendance/session/6/all"},
		},
		{
			name: "update single attendance",
			run: func() error {
				return client.UpdateAttendance(ctx, 6, 2, academy.AttendanceStatus{Status: "late"})
			},
			wantCall: call{method: http.MethodPut, uri: "/admin/attendance/session/6/user/2", body: `{"status":"late"}`},
		},
		{
			name: "grade submission",
			run: func() error {
				return client.GradeSubmission(ctx, 11, academy.SubmissionGrade{GradeScore: 90, Status: "graded"})
			},
			wantCall: call{method: http.MethodPost, uri: "/submissions/11/grade", body: `{"grade_score":90,"grade_feedback":"","status":"graded"}`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mu.Lock()
			calls = nil
			mu.Unlock()

			require.NoError(t, tt.run())

			mu.Lock()
			defer mu.Unlock()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantCall.method, calls[0].method)
			assert.Equal(t, tt.wantCall.uri, calls[0].uri)
			if tt.wantCall.body != "" {
				assert.JSONEq(t, tt.wantCall.body, calls[0].body)
			}
		})
	}
}

func TestCollection_cohortsFilteredByStream(t *testing.T) {
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		// ignores ?stream_id
		writeJSON(w, http.StatusOK, academy.OK([]academy.Cohort{
			{ID: 1, CohortName: "A1", StreamID: 1},
			{ID: 2, CohortName: "B1", StreamID: 2},
			{ID: 3, CohortName: "A2", StreamID: 1},
		}))
	})

	got, err := client.Cohorts().List(context.Background(), map[string]string{FilterStream: "1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A1", got[0].CohortName)
	assert.Equal(t, "A2", got[1].CohortName)
}

func TestCollection_unsupported(t *testing.T) {
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL)
	})
	ctx := context.Background()

	_, err := client.Instructors().Create(ctx, academy.InstructorDraft{Name: "I"})
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = client.Certificates().Update(ctx, "1", academy.CertificateDraft{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, client.SessionAttendance().Delete(ctx, "1"), ErrUnsupported)

	_, err = client.SessionAttendance().List(ctx, nil)
	assert.EqualError(t, err, `missing "session_id" filter`)
}

func TestCollection_sessionAttendanceSheet(t *testing.T) {
	client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/attendance/session/3", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":{
			"summary":{"total":2,"present":1},
			"attendance":[{"user_id":1,"name":"Ada","status":"present"},{"user_id":2,"name":"Bob","status":null}]
		}}`)
	})

	got, err := client.SessionAttendance().List(context.Background(), map[string]string{FilterSession: "3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsMarked())
	assert.False(t, got[1].IsMarked())
}

func TestClient_GradeBulk(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want int
	}{
		{name: "server count", data: academy.GradeBulkResult{GradedCount: 1}, want: 1},
		{name: "fallback to submitted count", data: nil, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/admin/assignments/4/grade-bulk", r.URL.Path)
				writeJSON(w, http.StatusOK, academy.OK(tt.data))
			})
			got, err := client.GradeBulk(context.Background(), 4, academy.BulkGrade{
				Grades: []academy.GradeInput{{UserID: 1, GradeScore: 50}, {UserID: 2, GradeScore: 60}},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
