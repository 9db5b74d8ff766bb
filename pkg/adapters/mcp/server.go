package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/nodeweave/pkg/document"
	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource exposing the current graph document.
const GraphURI = "nodeweave://graph"

// Editor defines the editing surface the MCP server drives.
// *nodeweave.Editor implements it.
type Editor interface {
	Registry() *registry.Registry
	Snapshot() *document.Document
	AddNode(typeID string, pos domain.Position) (*graph.Node, error)
	RemoveNode(id string) error
	Connect(fromID, output, toID, input string) error
	Disconnect(toID, input string) error
	SetManualValue(id, input string, raw any) error
	Evaluate(id string) error
	Pull(id, output string) (any, error)
	Save(ctx context.Context, name string) error
	Load(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// TypeInfo is one entry of list_node_types.
type TypeInfo struct {
	TypeIdentifier string `json:"typeIdentifier"`
	Title          string `json:"title"`
	Inputs         []Port `json:"inputs"`
	Outputs        []Port `json:"outputs"`
}

// Port names a port and its data kind.
type Port struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Server wraps the Editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor, version string) *Server {
	s := &Server{
		editor:    editor,
		mcpServer: server.NewMCPServer("nodeweave-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the registered node types with their input and output ports."),
	), s.handleListTypes)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the current graph as a document."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.editor.Snapshot())
	})

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node of the given type. Returns its instance id."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type identifier, e.g. math.add")),
		mcp.WithNumber("x", mcp.Description("Canvas x position")),
		mcp.WithNumber("y", mcp.Description("Canvas y position")),
	), s.handleAddNode)

	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and every connection touching it."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Instance id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("node")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.editor.RemoveNode(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("removed " + id), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Connect an output of one node to an input of another."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Upstream instance id")),
		mcp.WithString("output", mcp.Required(), mcp.Description("Upstream output name")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Downstream instance id")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Downstream input name")),
	), s.handleConnect)

	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Sever the connection feeding an input."),
		mcp.WithString("to", mcp.Required(), mcp.Description("Instance id")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		to, err := request.RequireString("to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		input, err := request.RequireString("input")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.editor.Disconnect(to, input); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("disconnected " + to + "." + input), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("set_value",
		mcp.WithDescription("Set the manual value of an input. Vectors are objects with x, y and z."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Instance id")),
		mcp.WithString("input", mcp.Required(), mcp.Description("Input name")),
		mcp.WithAny("value", mcp.Required(), mcp.Description("New manual value")),
	), s.handleSetValue)

	s.mcpServer.AddTool(mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a node, or pull one of its outputs when output is given."),
		mcp.WithString("node", mcp.Required(), mcp.Description("Instance id")),
		mcp.WithString("output", mcp.Description("Output name to pull (optional)")),
	), s.handleEvaluate)

	s.mcpServer.AddTool(mcp.NewTool("list_graphs",
		mcp.WithDescription("List stored graph names."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		names, err := s.editor.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(names)
	})

	s.mcpServer.AddTool(mcp.NewTool("save_graph",
		mcp.WithDescription("Store the current graph under a name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Graph name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.editor.Save(ctx, name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("saved " + name), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("load_graph",
		mcp.WithDescription("Replace the current graph with a stored one."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Graph name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.editor.Load(ctx, name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(s.editor.Snapshot())
	})
}

func (s *Server) handleListTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := s.editor.Registry().Entries()
	out := make([]TypeInfo, 0, len(entries))
	for _, e := range entries {
		ti := TypeInfo{TypeIdentifier: e.TypeID, Title: e.Title}
		for _, p := range e.Signature.Inputs {
			ti.Inputs = append(ti.Inputs, Port{Name: p.Name, Kind: p.Kind.String()})
		}
		for _, p := range e.Signature.Outputs {
			ti.Outputs = append(ti.Outputs, Port{Name: p.Name, Kind: p.Kind.String()})
		}
		out = append(out, ti)
	}
	return jsonResult(out)
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeID, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pos := domain.Position{X: request.GetFloat("x", 0), Y: request.GetFloat("y", 0)}
	n, err := s.editor.AddNode(typeID, pos)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(n.UniqueIdentifier()), nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args [4]string
	for i, key := range []string{"from", "output", "to", "input"} {
		v, err := request.RequireString(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		args[i] = v
	}
	if err := s.editor.Connect(args[0], args[1], args[2], args[3]); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("connected %s.%s -> %s.%s", args[0], args[1], args[2], args[3])), nil
}

func (s *Server) handleSetValue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input, err := request.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, ok := request.GetArguments()["value"]
	if !ok {
		return mcp.NewToolResultError(`required argument "value" not found`), nil
	}
	if err := s.editor.SetManualValue(id, input, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("set %s.%s", id, input)), nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("node")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if output := request.GetString("output", ""); output != "" {
		v, err := s.editor.Pull(id, output)
		if err != nil {
			slog.Warn("MCP evaluate: pull failed", "node_id", id, "output", output, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(v)
	}
	if err := s.editor.Evaluate(id); err != nil {
		slog.Warn("MCP evaluate: execution failed", "node_id", id, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("evaluated " + id), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current Graph Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := document.Encode(s.editor.Snapshot(), document.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
