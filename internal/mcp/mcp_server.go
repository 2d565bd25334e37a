// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repometrics MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Repository Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: collect_repositories ---
	s.AddTool(mcp.NewTool("collect_repositories",
		mcp.WithDescription("Collect the most popular repositories matching a search query."),
		mcp.WithString("query", mcp.Description("Search predicate (e.g., 'language:java'). Defaults to the configured query.")),
		mcp.WithNumber("limit", mcp.Description("Number of repositories to collect (1-1000).")),
	), h.handleCollectRepositories)

	// --- 2. Tool: analyze_repositories ---
	s.AddTool(mcp.NewTool("analyze_repositories",
		mcp.WithDescription("Collect repositories, synthesize quality metrics and correlate them with process metrics."),
		mcp.WithString("query", mcp.Description("Search predicate (e.g., 'language:java').")),
		mcp.WithNumber("population", mcp.Description("Number of repositories to collect (1-1000).")),
		mcp.WithNumber("subset", mcp.Description("Number of collected repositories to analyze (0 means all).")),
		mcp.WithNumber("seed", mcp.Description("Seed for the metric synthesizer (0 picks one).")),
	), h.handleAnalyzeRepositories)

	// --- 3. Tool: describe_metrics ---
	s.AddTool(mcp.NewTool("describe_metrics",
		mcp.WithDescription("Describe how every synthesized metric is derived, with its bounds."),
	), h.handleDescribeMetrics)

	return s
}

// StartMCPServer starts the repometrics MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
