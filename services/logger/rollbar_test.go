package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/thinkwise/core"
	"github.com/trezcool/thinkwise/core/user"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{std: log.New(new(bytes.Buffer), "", 0)}
	err := errors.New("course not found")
	custom := map[string]interface{}{"corsoId": 3}
	staff := user.User{ID: 1, Username: "segreteria", Email: "segreteria@thinkwise.it"}

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "message only", want: []interface{}{"msg"}},
		{name: "error and data", args: []interface{}{err, custom}, want: []interface{}{"msg", err, custom}},
		{name: "staff user is dropped", args: []interface{}{staff, err, staff}, want: []interface{}{"msg", err}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.prepare("msg", tc.args))
		})
	}
}

func Test_scrubFields(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"password", true},
		{"passwordConfirm", true},
		{"Authorization", true},
		{"email", true},
		{"telefono", true},
		{"nome", false},
		{"corsoId", false},
	}
	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			assert.Equal(t, tc.want, scrubFields.MatchString(tc.field))
		})
	}
}

func Test_cacheBackend(t *testing.T) {
	assert.Equal(t, "memory", cacheBackend(&core.Config{}))
	assert.Equal(t, "redis", cacheBackend(&core.Config{Cache: core.CacheConfig{RedisURL: "redis://localhost:6379/0"}}))
}

func TestRollbarLogger_print(t *testing.T) {
	buf := new(bytes.Buffer)
	l := RollbarLogger{std: log.New(buf, "", 0)}
	l.print("room full", []interface{}{"Aula Turing", 12})
	assert.Equal(t, "room full\nAula Turing\n12\n", buf.String())
}
