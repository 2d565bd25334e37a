package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/repometrics/core"
	"github.com/huangsam/repometrics/core/synth"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// analysisResponse is the JSON payload of analyze_repositories.
type analysisResponse struct {
	RunUUID      string                     `json:"run_uuid,omitempty"`
	Seed         uint64                     `json:"seed"`
	Collected    int                        `json:"collected"`
	Analyzed     int                        `json:"analyzed"`
	Skipped      int                        `json:"skipped"`
	Omitted      int                        `json:"omitted"`
	Correlations []schema.CorrelationResult `json:"correlations"`
}

func (h *toolHandler) handleCollectRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if q := request.GetString("query", ""); q != "" {
		cfg.Query.Predicate = q
	}
	if l := request.GetInt("limit", 0); l != 0 {
		cfg.Population = l
	}
	if err := contract.RevalidateRun(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid collection parameters: %v", err)), nil
	}

	repos, _, err := core.GetCollectResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("collection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(repos, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeRepositories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if q := request.GetString("query", ""); q != "" {
		cfg.Query.Predicate = q
	}
	if p := request.GetInt("population", 0); p != 0 {
		cfg.Population = p
	}
	args := request.GetArguments()
	if _, ok := args["subset"]; ok {
		cfg.Subset = request.GetInt("subset", 0)
	}
	if s := request.GetInt("seed", 0); s > 0 {
		cfg.Seed = uint64(s)
	}
	if err := contract.RevalidateRun(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}

	ds, _, err := core.GetAnalyzeResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	resp := analysisResponse{
		RunUUID:      ds.RunUUID,
		Seed:         ds.Seed,
		Collected:    len(ds.Repositories),
		Analyzed:     ds.Table.Len(),
		Skipped:      ds.Skipped,
		Omitted:      ds.Omitted,
		Correlations: ds.Correlations,
	}
	jsonData, _ := json.MarshalIndent(resp, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDescribeMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(synth.Definitions(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
