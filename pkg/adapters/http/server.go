package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/aretw0/nodeweave/pkg/schema"
	"github.com/go-chi/chi/v5"
)

// Editor is the editing surface served over HTTP. *nodeweave.Editor implements it.
type Editor interface {
	Registry() *registry.Registry
	View(fn func(g *graph.Graph) error) error
	Snapshot() *document.Document
	Restore(doc *document.Document) error
	Validate(doc *document.Document) error

	AddNode(typeID string, pos domain.Position) (*graph.Node, error)
	RemoveNode(id string) error
	MoveNode(id string, pos domain.Position) error
	Connect(fromID, output, toID, input string) error
	Disconnect(toID, input string) error
	SetManualValue(id, input string, raw any) error
	Evaluate(id string) error
	Pull(id, output string) (any, error)

	Save(ctx context.Context, name string) error
	Load(ctx context.Context, name string) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Server serves the editor API.
type Server struct {
	Editor  Editor
	Streams *StreamManager
	Version string
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithStreams serves /events from sm. Its Hooks must be registered on the editor.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics mounts h (typically promhttp.Handler) at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithVersion reports v from /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.Version = v }
}

// NewHandler creates a new HTTP handler for the editor.
func NewHandler(editor Editor, opts ...Option) http.Handler {
	s := &Server{Editor: editor, Version: "unknown"}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.ListTypes)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.GetGraph)
		r.Put("/", s.PutGraph)
		r.Post("/validate", s.ValidateGraph)
	})

	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", s.AddNode)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetNode)
			r.Delete("/", s.RemoveNode)
			r.Put("/position", s.MoveNode)
			r.Post("/evaluate", s.EvaluateNode)
			r.Get("/outputs/{output}", s.PullOutput)
			r.Put("/inputs/{input}/value", s.SetManualValue)
			r.Put("/inputs/{input}/connection", s.Connect)
			r.Delete("/inputs/{input}/connection", s.Disconnect)
		})
	})

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.ListGraphs)
		r.Put("/{name}", s.SaveGraph)
		r.Post("/{name}/load", s.LoadGraph)
		r.Delete("/{name}", s.DeleteGraph)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Request / response bodies --

// TypeInfo describes a registered node type.
type TypeInfo struct {
	TypeIdentifier string           `json:"typeIdentifier"`
	Title          string           `json:"title"`
	Inputs         []schema.PortDef `json:"inputs"`
	Outputs        []schema.PortDef `json:"outputs"`
}

// NodeInfo is the live view of one node.
type NodeInfo struct {
	document.Item
	Title   string         `json:"title"`
	Outputs map[string]any `json:"outputs"`
}

// AddNodeRequest is the body of POST /nodes.
type AddNodeRequest struct {
	TypeIdentifier string          `json:"typeIdentifier"`
	Position       domain.Position `json:"position"`
}

// ValueRequest is the body of PUT /nodes/{id}/inputs/{input}/value.
type ValueRequest struct {
	Value any `json:"value"`
}

// ConnectRequest is the body of PUT /nodes/{id}/inputs/{input}/connection.
type ConnectRequest struct {
	From   string `json:"from"`
	Output string `json:"output"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// -- Handlers --

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "nodeweave-http",
		"version": strings.TrimSpace(s.Version),
	})
}

// ListTypes handles the GET /types request.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	entries := s.Editor.Registry().Entries()
	out := make([]TypeInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, TypeInfo{
			TypeIdentifier: e.TypeID,
			Title:          e.Title,
			Inputs:         e.Signature.Inputs,
			Outputs:        e.Signature.Outputs,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGraph handles the GET /graph request.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

// PutGraph handles the PUT /graph request. The document is validated first;
// the current graph is replaced only if it builds.
func (s *Server) PutGraph(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.Editor.Validate(doc); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Editor.Restore(doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

// ValidateGraph handles the POST /graph/validate request.
func (s *Server) ValidateGraph(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	if err := s.Editor.Validate(doc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// AddNode handles the POST /nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body AddNodeRequest
	if !decodeBody(w, r, &body) {
		return
	}
	n, err := s.Editor.AddNode(body.TypeIdentifier, body.Position)
	if err != nil {
		writeError(w, err)
		return
	}
	s.writeNode(w, http.StatusCreated, n.UniqueIdentifier())
}

// GetNode handles the GET /nodes/{id} request.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	s.writeNode(w, http.StatusOK, chi.URLParam(r, "id"))
}

// RemoveNode handles the DELETE /nodes/{id} request.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.RemoveNode(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNode handles the PUT /nodes/{id}/position request.
func (s *Server) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Position
	if !decodeBody(w, r, &pos) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Editor.MoveNode(id, pos); err != nil {
		writeError(w, err)
		return
	}
	s.writeNode(w, http.StatusOK, id)
}

// EvaluateNode handles the POST /nodes/{id}/evaluate request.
// Execution failures are reported as 422 with the node's cached outputs unchanged.
func (s *Server) EvaluateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Editor.Evaluate(id); err != nil {
		writeError(w, err)
		return
	}
	s.writeNode(w, http.StatusOK, id)
}

// PullOutput handles the GET /nodes/{id}/outputs/{output} request.
func (s *Server) PullOutput(w http.ResponseWriter, r *http.Request) {
	v, err := s.Editor.Pull(chi.URLParam(r, "id"), chi.URLParam(r, "output"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ValueRequest{Value: v})
}

// SetManualValue handles the PUT /nodes/{id}/inputs/{input}/value request.
func (s *Server) SetManualValue(w http.ResponseWriter, r *http.Request) {
	var body ValueRequest
	if !decodeBody(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Editor.SetManualValue(id, chi.URLParam(r, "input"), body.Value); err != nil {
		writeError(w, err)
		return
	}
	s.writeNode(w, http.StatusOK, id)
}

// Connect handles the PUT /nodes/{id}/inputs/{input}/connection request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var body ConnectRequest
	if !decodeBody(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Editor.Connect(body.From, body.Output, id, chi.URLParam(r, "input")); err != nil {
		writeError(w, err)
		return
	}
	s.writeNode(w, http.StatusOK, id)
}

// Disconnect handles the DELETE /nodes/{id}/inputs/{input}/connection request.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Editor.Disconnect(id, chi.URLParam(r, "input")); err != nil {
		writeError(w, err)
		return
	}
	s.writeNode(w, http.StatusOK, id)
}

// ListGraphs handles the GET /graphs request.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	names, err := s.Editor.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// SaveGraph handles the PUT /graphs/{name} request.
func (s *Server) SaveGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Save(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadGraph handles the POST /graphs/{name}/load request.
func (s *Server) LoadGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Load(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Editor.Snapshot())
}

// DeleteGraph handles the DELETE /graphs/{name} request.
func (s *Server) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Editor.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional watch query parameter is a comma separated list of event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	watch := map[domain.EventType]bool{}
	if q := r.URL.Query().Get("watch"); q != "" {
		for _, t := range strings.Split(q, ",") {
			watch[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("SSE Client Disconnected")
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[ev.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, ev.data())
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) writeNode(w http.ResponseWriter, status int, id string) {
	var info NodeInfo
	err := s.Editor.View(func(g *graph.Graph) error {
		n, ok := g.FindNodeByInstanceID(id)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
		}
		info = describeNode(n)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, info)
}

func describeNode(n *graph.Node) NodeInfo {
	info := NodeInfo{
		Item: document.Item{
			TypeIdentifier: n.TypeIdentifier(),
			InstanceID:     n.UniqueIdentifier(),
			Position:       n.Position,
			Inputs:         make(map[string]document.InputState),
		},
		Title:   n.Title,
		Outputs: make(map[string]any),
	}
	for _, in := range n.Inputs() {
		state := document.InputState{ManualValue: in.ManualValue()}
		if out := in.Connection(); out != nil {
			state.ConnectionTargetInstanceID = out.Node().UniqueIdentifier()
			state.ConnectionTargetOutputName = out.Name()
		}
		info.Inputs[in.Name()] = state
	}
	for _, out := range n.Outputs() {
		if v, ok := out.CachedValue(); ok {
			info.Outputs[out.Name()] = v
		}
	}
	return info
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		slog.Warn("Invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (*document.Document, bool) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return nil, false
	}
	format := document.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = document.FormatYAML
	}
	doc, err := document.Decode(buf.Bytes(), format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		slog.Warn("Invalid graph document", "error", err)
		return nil, false
	}
	return doc, true
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var execErr *graph.ExecutionError
	var aggErr *schema.AggregateError
	switch {
	case errors.As(err, &execErr), errors.As(err, &aggErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrGraphNotFound),
		errors.Is(err, domain.ErrUnknownTypeID):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCyclicConnection),
		errors.Is(err, domain.ErrDuplicateInstance):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrUnknownPort),
		errors.Is(err, domain.ErrInvalidGraphName),
		errors.Is(err, domain.ErrUnresolvedReference):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	if details := schema.ValidationErrors(err); details != nil {
		resp.Error = fmt.Sprintf("%d validation errors", len(details))
		for _, d := range details {
			resp.Details = append(resp.Details, d.Error())
		}
	}
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
