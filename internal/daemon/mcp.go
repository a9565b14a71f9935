package daemon

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes two read-only introspection tools over stdio,
// mirroring the status/metrics IPC ops without any way to mutate
// battery state or sign manifests.
type MCPServer struct {
	inner *server.MCPServer
	rt    *Runtime
}

func newMCPServer(rt *Runtime) *MCPServer {
	s := server.NewMCPServer("pohwd", "1.0.0", server.WithLogging())

	statusTool := mcp.NewTool("pohw_status",
		mcp.WithDescription("Read the attention battery's current state, balance, and CNS score."),
	)
	metricsTool := mcp.NewTool("pohw_metrics",
		mcp.WithDescription("Read the most recent kinematic metrics and CNS score."),
	)

	m := &MCPServer{inner: s, rt: rt}
	s.AddTool(statusTool, m.handleStatus)
	s.AddTool(metricsTool, m.handleMetrics)
	return m
}

func (m *MCPServer) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, balance, cns, err := m.rt.Status()
	if err != nil {
		return errResult(err.Error()), nil
	}
	body, _ := json.Marshal(map[string]any{
		"state":   state,
		"balance": balance,
		"cns":     cns,
	})
	return textResult(string(body)), nil
}

func (m *MCPServer) handleMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics, cns, err := m.rt.Metrics()
	if err != nil {
		return errResult(err.Error()), nil
	}
	body, _ := json.Marshal(map[string]any{
		"metrics":   metrics,
		"cns_score": cns,
	})
	return textResult(string(body)), nil
}

// Serve blocks serving MCP over pohwd's own stdin/stdout, for an
// MCP-aware editor or agent that launches pohwd as a subprocess.
func (m *MCPServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(m.inner)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}}}
}

func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{mcp.TextContent{Type: "text", Text: msg}}}
}
