package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST", Debug: true})

	usr := academy.User{ID: 3, Name: "Admin", Email: "admin@test.cd"}
	err := errors.New("boom")
	extra := map[string]interface{}{"cohort_id": 4}

	args := logger.prepare("listing cohorts", []interface{}{err, &usr, extra, usr})
	assert.Equal(t, []interface{}{"listing cohorts", err, extra}, args)

	logger.Warn("listing cohorts", err, usr)
	assert.Contains(t, buf.String(), "listing cohorts\nboom\n")
	assert.NotContains(t, buf.String(), usr.Email)
}
