package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/nodeweave"
	httpadapter "github.com/aretw0/nodeweave/pkg/adapters/http"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	editor  *nodeweave.Editor
	out     *nodes.Buffer
	handler http.Handler
	streams *httpadapter.StreamManager
}

func newFixture(t *testing.T, opts ...httpadapter.Option) *fixture {
	t.Helper()
	sm := httpadapter.NewStreamManager()
	out := &nodes.Buffer{}
	ed, err := nodeweave.New(
		nodeweave.WithNodeDeps(nodes.Deps{Sink: out}),
		nodeweave.WithLifecycleHooks(sm.Hooks()),
	)
	require.NoError(t, err)
	opts = append([]httpadapter.Option{httpadapter.WithStreams(sm)}, opts...)
	return &fixture{
		editor:  ed,
		out:     out,
		handler: httpadapter.NewHandler(ed, opts...),
		streams: sm,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *fixture) addNode(t *testing.T, typeID string) string {
	t.Helper()
	w := f.do(t, "POST", "/nodes", map[string]any{"typeIdentifier": typeID, "position": []float64{0, 0}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[httpadapter.NodeInfo](t, w).InstanceID
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t, httpadapter.WithVersion("1.2.3"))

	w := f.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, "GET", "/info", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"app":"nodeweave-http","version":"1.2.3"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "OPTIONS", "/nodes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListTypes(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/types", nil)
	require.Equal(t, http.StatusOK, w.Code)

	types := decode[[]httpadapter.TypeInfo](t, w)
	ids := make([]string, 0, len(types))
	for _, ti := range types {
		ids = append(ids, ti.TypeIdentifier)
	}
	assert.Contains(t, ids, nodes.MathAdd)
	assert.Contains(t, ids, nodes.Print)
}

func TestBuildAndEvaluate(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(t, nodes.MathAdd)
	p := f.addNode(t, nodes.Print)
	c := f.addNode(t, nodes.ConstString)

	w := f.do(t, "PUT", "/nodes/"+a+"/inputs/a/value", map[string]any{"value": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(t, "PUT", "/nodes/"+a+"/inputs/b/value", map[string]any{"value": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, "GET", "/nodes/"+a+"/outputs/sum", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"value":42}`, w.Body.String())

	w = f.do(t, "PUT", "/nodes/"+c+"/inputs/value/value", map[string]any{"value": "hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(t, "PUT", "/nodes/"+p+"/inputs/text/connection", map[string]any{"from": c, "output": "value"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decode[httpadapter.NodeInfo](t, w)
	assert.Equal(t, c, info.Inputs["text"].ConnectionTargetInstanceID)

	w = f.do(t, "POST", "/nodes/"+p+"/evaluate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"hi"}, f.out.Lines())

	w = f.do(t, "POST", "/nodes/"+c+"/evaluate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hi", decode[httpadapter.NodeInfo](t, w).Outputs["value"])

	w = f.do(t, "DELETE", "/nodes/"+p+"/inputs/text/connection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[httpadapter.NodeInfo](t, w).Inputs["text"].ConnectionTargetInstanceID)

	w = f.do(t, "PUT", "/nodes/"+p+"/position", []float64{3, 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Position{X: 3, Y: 4}, decode[httpadapter.NodeInfo](t, w).Position)

	w = f.do(t, "DELETE", "/nodes/"+p, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, "GET", "/nodes/"+p, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorStatus(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(t, nodes.MathAdd)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown type", "POST", "/nodes", map[string]any{"typeIdentifier": "nope", "position": []float64{0, 0}}, http.StatusNotFound},
		{"missing node", "POST", "/nodes/ghost/evaluate", nil, http.StatusNotFound},
		{"unknown port", "PUT", "/nodes/" + a + "/inputs/zzz/value", map[string]any{"value": 1}, http.StatusBadRequest},
		{"wrong kind", "PUT", "/nodes/" + a + "/inputs/a/value", map[string]any{"value": "x"}, http.StatusBadRequest},
		{"self cycle", "PUT", "/nodes/" + a + "/inputs/a/connection", map[string]any{"from": a, "output": "sum"}, http.StatusConflict},
		{"bad graph name", "PUT", "/graphs/bad:name", nil, http.StatusBadRequest},
		{"missing graph", "POST", "/graphs/nope/load", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[httpadapter.ErrorResponse](t, w).Error)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest("POST", "/nodes", strings.NewReader("{"))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecutionFailureIsUnprocessable(t *testing.T) {
	f := newFixture(t)
	j := f.addNode(t, nodes.SceneJoint)

	// No interpreter is configured, so the joint node fails.
	w := f.do(t, "POST", "/nodes/"+j+"/evaluate", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestPutGraph(t *testing.T) {
	f := newFixture(t)
	doc := `{"items":[
		{"typeIdentifier":"const.integer","instanceId":"k","position":[0,0],"inputs":{"value":{"manualValue":7}}},
		{"typeIdentifier":"logic.not","instanceId":"n","position":[1,0],"inputs":{}}
	]}`

	req := httptest.NewRequest("PUT", "/graph", strings.NewReader(doc))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, f.editor.Graph().Len())

	w = f.do(t, "GET", "/nodes/k/outputs/value", nil)
	assert.JSONEq(t, `{"value":7}`, w.Body.String())

	bad := `{"items":[
		{"typeIdentifier":"nope","instanceId":"a","position":[0,0],"inputs":{}},
		{"typeIdentifier":"print","instanceId":"b","position":[0,0],
		 "inputs":{"text":{"connectionTargetInstanceId":"ghost","connectionTargetOutputName":"value"}}}
	]}`
	req = httptest.NewRequest("PUT", "/graph", strings.NewReader(bad))
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := decode[httpadapter.ErrorResponse](t, w)
	assert.Len(t, resp.Details, 2)
	assert.Equal(t, 2, f.editor.Graph().Len(), "rejected document keeps the current graph")

	req = httptest.NewRequest("POST", "/graph/validate", strings.NewReader("items: []\n"))
	req.Header.Set("Content-Type", "application/yaml")
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSaveLoadGraphs(t *testing.T) {
	f := newFixture(t)
	f.addNode(t, nodes.LogicNot)

	w := f.do(t, "PUT", "/graphs/first", nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = f.do(t, "GET", "/graphs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first"}, decode[[]string](t, w))

	f.addNode(t, nodes.LogicNot)
	require.Equal(t, 2, f.editor.Graph().Len())

	w = f.do(t, "POST", "/graphs/first/load", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, f.editor.Graph().Len())

	w = f.do(t, "DELETE", "/graphs/first", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, "GET", "/graphs", nil)
	assert.Empty(t, decode[[]string](t, w))
}

func TestMetricsHandler(t *testing.T) {
	called := false
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	f := newFixture(t, httpadapter.WithMetrics(metrics))
	w := f.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)

	f = newFixture(t)
	w = f.do(t, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	id := f.addNode(t, nodes.LogicNot)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?watch=node_result", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readUntil := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}
	readUntil("event: ping")

	// The connect event is filtered out by watch.
	k := f.addNode(t, nodes.ConstBoolean)
	require.NoError(t, f.editor.Connect(k, "value", id, "in"))
	require.NoError(t, f.editor.Evaluate(id))

	assert.Equal(t, "event: node_result", readUntil("event: "))
	data := strings.TrimPrefix(readUntil("data: "), "data: ")
	var ev httpadapter.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, domain.EventNodeResult, ev.Type)
	assert.Equal(t, k, ev.InstanceID, "upstream result is reported first")
}

func TestStreamManager(t *testing.T) {
	sm := httpadapter.NewStreamManager()
	ch, unsubscribe := sm.Subscribe()

	sm.Broadcast(httpadapter.Event{Type: domain.EventConnect})
	select {
	case ev := <-ch:
		assert.Equal(t, domain.EventConnect, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	// Broadcasting with no subscribers is a no-op.
	sm.Broadcast(httpadapter.Event{Type: domain.EventConnect})
}
