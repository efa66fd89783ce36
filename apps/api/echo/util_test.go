package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
	emailsvc "github.com/trezcool/academia/services/email"
	inmemdb "github.com/trezcool/academia/storage/database/inmem"
	"github.com/trezcool/academia/tests"
)

type testEnv struct {
	server     *Server
	db         *inmemdb.DB
	mailSvc    *emailsvc.ConsoleServiceMock
	conf       *core.Config
	admin      academy.User
	instructor academy.User
}

func setup(t *testing.T) testEnv {
	t.Helper()
	conf := testutil.Config()
	db := inmemdb.Open()
	admin, err := inmemdb.Seed(db, conf)
	require.NoError(t, err)
	instructor := testutil.CreateUser(t, db, "Grace", "grace@academia.test", "grace-pwd", academy.RoleInstructor)

	validate, translator := academy.NewValidator()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         testutil.NopLogger{},
		Repo:           db,
		MailSvc:        mailSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return testEnv{server: server, db: db, mailSvc: mailSvc, conf: conf, admin: admin, instructor: instructor}
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, usr academy.User, conf *core.Config) string {
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func (env testEnv) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	env.server.ServeHTTP(rec, req)

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData != nil {
		ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
		if err != nil {
			t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
		}
		if !ok {
			t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
		}
	}
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env academy.Envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success, rec.Body.String())
	return env.Data
}

func fail(msg string, fields ...map[string]string) []byte {
	env := errorEnvelope{Error: msg}
	if len(fields) > 0 {
		env.Fields = fields[0]
	}
	b, _ := json.Marshal(env)
	return b
}
