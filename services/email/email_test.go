package emailsvc

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:          "Academia",
		SendgridApiKey:   "sg-key",
		DefaultFromEmail: mail.Address{Name: "Academia", Address: "noreply@academia.test"},
	}
}

func TestNewService(t *testing.T) {
	conf := testConfig()
	conf.Debug = true
	assert.IsType(t, &consoleService{}, NewService(conf, log.Default(), nil))

	conf.Debug = false
	assert.IsType(t, &sendgridService{}, NewService(conf, log.Default(), nil))

	conf.SendgridApiKey = ""
	assert.IsType(t, &consoleService{}, NewService(conf, log.Default(), nil))
}

func TestConsoleServiceMock(t *testing.T) {
	require.NoError(t, core.RegisterEmailTemplate(
		"test_announcement",
		"Hello {{.Name}}, {{.Body}}",
		"<p>Hello {{.Name}}, {{.Body}}</p>",
	))
	svc := NewConsoleServiceMock(testConfig())

	tests := []struct {
		name     string
		msg      core.EmailMessage
		wantSent bool
		wantText string
		wantHTML string
	}{
		{
			name:     "plain body",
			msg:      core.EmailMessage{To: []mail.Address{{Address: "ada@test.cd"}}, Subject: "Hi", BodyStr: "welcome"},
			wantSent: true, wantText: "welcome",
		},
		{
			name: "template",
			msg: core.EmailMessage{
				Bcc: []mail.Address{{Address: "ada@test.cd"}}, Subject: "News",
				TemplateName: "test_announcement", TemplateData: map[string]string{"Name": "Ada", "Body": "class moved"},
			},
			wantSent: true, wantText: "Hello Ada, class moved", wantHTML: "<p>Hello Ada, class moved</p>",
		},
		{name: "no recipients", msg: core.EmailMessage{Subject: "Hi", BodyStr: "welcome"}},
		{name: "no content", msg: core.EmailMessage{To: []mail.Address{{Address: "ada@test.cd"}}, Subject: "Hi"}},
		{name: "unknown template", msg: core.EmailMessage{To: []mail.Address{{Address: "ada@test.cd"}}, TemplateName: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(svc.SentMessages())
			msg := tt.msg
			svc.SendMessages(&msg)

			sent := svc.SentMessages()
			if !tt.wantSent {
				assert.Len(t, sent, before)
				return
			}
			require.Len(t, sent, before+1)
			last := sent[len(sent)-1]
			assert.Equal(t, tt.wantText, last.TextContent)
			assert.Equal(t, tt.wantHTML, last.HTMLContent)
		})
	}
}

func TestConsoleService_format(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())
	body, err := svc.format(core.EmailMessage{
		To:          []mail.Address{{Name: "Ada", Address: "ada@test.cd"}},
		Subject:     "Hi",
		TextContent: "welcome",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Subject: [Academia] Hi\r\n")
	assert.Contains(t, body, `To: "Ada" <ada@test.cd>`)
	assert.Contains(t, body, "welcome")
	assert.NotContains(t, body, "text/html")
	assert.NotContains(t, body, "CC:")
}

func TestSendgridService_send(t *testing.T) {
	var (
		mu      sync.Mutex
		gotAuth string
		gotBody map[string]interface{}
		status  = http.StatusAccepted
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(status)
	}))
	defer srv.Close()
	defer func(h string) { host = h }(host)
	host = srv.URL

	svc := NewSendgridService(testConfig(), nil).(*sendgridService)
	msg := core.EmailMessage{To: []mail.Address{{Address: "ada@test.cd"}}, Subject: "News", BodyStr: "class moved"}
	require.NoError(t, svc.sendMessage(&msg))

	mu.Lock()
	assert.Equal(t, "Bearer sg-key", gotAuth)
	p := gotBody["personalizations"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "[Academia] News", p["subject"])
	contents := gotBody["content"].([]interface{})
	require.Len(t, contents, 1)
	assert.Equal(t, "text/plain", contents[0].(map[string]interface{})["type"])

	status = http.StatusBadRequest
	mu.Unlock()
	assert.Error(t, svc.sendMessage(&msg))
}
