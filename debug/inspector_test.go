package debug

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iocgo/injector"
	"github.com/iocgo/injector/proxy"
)

type session struct {
	User   string
	token  string
	hits   int
	tags   []string
	closed error
}

func (s *session) touch(by int, tags ...string) (int, error) {
	s.hits += by
	s.tags = append(s.tags, tags...)
	if s.hits > 10 {
		return s.hits, fmt.Errorf("too many hits")
	}
	return s.hits, nil
}

func init() {
	proxy.Reg[*session]("touch", (*session).touch)
}

func setup(t *testing.T) (*gin.Engine, *session, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)

	obj := &session{User: "alice", token: "s3cr3t"}
	container := injector.NewContainer()
	injector.ProvideObject(container, "session", func() (*session, error) { return obj, nil })
	injector.ProvideObject(container, "count", func() (int, error) { return 1, nil })

	core, logs := observer.New(zap.InfoLevel)
	return New(container, zap.New(core)).Handler(), obj, logs
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestList(t *testing.T) {
	router, _, _ := setup(t)

	w := do(router, http.MethodGet, "/objects", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"objects":["count","session"]}`, w.Body.String())
}

func TestObject(t *testing.T) {
	router, _, logs := setup(t)

	w := do(router, http.MethodGet, "/objects/session", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := gjson.Parse(w.Body.String())
	assert.Equal(t, "debug.session", body.Get("context").String())
	assert.Equal(t, "s3cr3t", body.Get("fields.token").String())
	assert.Equal(t, "alice", body.Get("fields.User").String())
	assert.Equal(t, 1, logs.FilterMessage("[INSPECT]").Len())

	w = do(router, http.MethodGet, "/objects/session?context=other.Type", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = gjson.Parse(w.Body.String())
	assert.False(t, body.Get("fields.token").Exists())
	assert.True(t, body.Get("fields.User").Exists())
}

func TestFields(t *testing.T) {
	router, obj, logs := setup(t)

	w := do(router, http.MethodGet, "/objects/session/fields/token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"value":"s3cr3t"}`, w.Body.String())

	w = do(router, http.MethodPut, "/objects/session/fields/hits", `{"value": 7}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, obj.hits)
	assert.Equal(t, 1, logs.FilterMessage("field injected").Len())

	w = do(router, http.MethodPut, "/objects/session/fields/tags", `{"value": ["a", "b"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a", "b"}, obj.tags)

	w = do(router, http.MethodPut, "/objects/session/fields/hits", `{"value": "seven"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPut, "/objects/session/fields/hits", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 7, obj.hits)
}

func TestCall(t *testing.T) {
	router, obj, _ := setup(t)

	w := do(router, http.MethodPost, "/objects/session/methods/touch", `{"args": [3, "x", "y"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"out":[3,null]}`, w.Body.String())
	assert.Equal(t, []string{"x", "y"}, obj.tags)

	w = do(router, http.MethodPost, "/objects/session/methods/touch", `{"args": [8]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"out":[11,"too many hits"]}`, w.Body.String())

	w = do(router, http.MethodPost, "/objects/session/methods/touch", `{"args": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/objects/session/methods/touch?context=other.Type", `{"args": [1]}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestErrors(t *testing.T) {
	router, _, logs := setup(t)

	for _, tc := range []struct {
		path   string
		status int
	}{
		{"/objects/missing", http.StatusNotFound},
		{"/objects/count", http.StatusBadRequest},
		{"/objects/session/fields/missing", http.StatusNotFound},
		{"/objects/session/fields/token?context=other.Type", http.StatusForbidden},
	} {
		t.Run(tc.path, func(t *testing.T) {
			w := do(router, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.status, w.Code)
			assert.True(t, gjson.Get(w.Body.String(), "error").Exists())
		})
	}
	assert.Equal(t, 4, logs.FilterLevelExact(zap.WarnLevel).Len())
}

type worker struct {
	Name string
	done chan struct{}
	hook func()
}

func (w *worker) Done() <-chan struct{} { return w.done }

func TestUnencodableValues(t *testing.T) {
	gin.SetMode(gin.TestMode)

	container := injector.NewContainer()
	injector.ProvideObject(container, "worker", func() (*worker, error) {
		return &worker{Name: "w1", done: make(chan struct{}), hook: func() {}}, nil
	})
	router := New(container, zap.NewNop()).Handler()

	w := do(router, http.MethodGet, "/objects/worker", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.Parse(w.Body.String())
	assert.Equal(t, "w1", body.Get("fields.Name").String())
	assert.NotEmpty(t, body.Get("fields.done").String())
	assert.NotEmpty(t, body.Get("fields.hook").String())

	w = do(router, http.MethodGet, "/objects/worker/fields/done", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "value").Exists(), w.Body.String())

	w = do(router, http.MethodPost, "/objects/worker/methods/Done", `{"args":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, gjson.String, gjson.Get(w.Body.String(), "out.0").Type, w.Body.String())
}
