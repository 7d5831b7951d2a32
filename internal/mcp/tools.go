package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/standardbeagle/dctlforge/internal/dctlfile"
	"github.com/standardbeagle/dctlforge/internal/generator"
	"github.com/standardbeagle/dctlforge/internal/param"
	"github.com/standardbeagle/dctlforge/internal/parser"
	"github.com/standardbeagle/dctlforge/internal/roundtrip"
)

// Tools serves the DCTL operations as MCP tools
type Tools struct {
	parser *parser.Parser
	limits dctlfile.Limits
}

func NewTools(p *parser.Parser, limits dctlfile.Limits) *Tools {
	if p == nil {
		p = parser.New()
	}
	return &Tools{parser: p, limits: limits}
}

// NewServer builds a stdio-ready MCP server with every tool registered
func NewServer(version string, tools *Tools) *server.MCPServer {
	srv := server.NewMCPServer(
		"dctl",
		version,
		server.WithToolCapabilities(true),
	)
	tools.Register(srv)
	return srv
}

// Serve runs the server on stdin/stdout until the client disconnects
func Serve(srv *server.MCPServer) error {
	return server.ServeStdio(srv)
}

func (t *Tools) Register(srv *server.MCPServer) {
	parseTool := mcplib.NewTool("dctl_parse",
		mcplib.WithDescription(`Extract the DEFINE_UI_PARAMS declarations from DCTL script text.

Returns JSON with the parsed parameters (name, display name, UI type, default value, range, options, category, line), per-declaration parse errors, category warnings, a one-line summary and improvement suggestions. Malformed declarations never fail the call; they are listed under parseErrors.`),
		mcplib.WithString("content",
			mcplib.Required(),
			mcplib.Description("Full DCTL script text"),
		),
	)
	srv.AddTool(parseTool, t.handleParse)

	generateTool := mcplib.NewTool("dctl_generate",
		mcplib.WithDescription(`Generate a complete DCTL script from a parameter list.

Parameters are a JSON array (or an object with a "parameters" array) of controls, each with "type" (slider, int_slider, checkbox, value_box, combo_box, color), "id", "name", "label", "enabled" and "value", plus min/max/step or options/optionLabels where they apply. Disabled controls are left out.`),
		mcplib.WithString("parameters",
			mcplib.Required(),
			mcplib.Description("JSON parameter list"),
		),
	)
	srv.AddTool(generateTool, t.handleGenerate)

	editTool := mcplib.NewTool("dctl_edit",
		mcplib.WithDescription(`Change parameter values in existing DCTL script text.

Only the edited declarations are rewritten; comments, whitespace and all other code are kept byte for byte. Values are checked against the declared type and range.`),
		mcplib.WithString("content",
			mcplib.Required(),
			mcplib.Description("Full DCTL script text"),
		),
		mcplib.WithString("edits",
			mcplib.Required(),
			mcplib.Description(`JSON object mapping parameter names to new values, e.g. {"gain": 1.5, "invert": true}`),
		),
	)
	srv.AddTool(editTool, t.handleEdit)

	validateTool := mcplib.NewTool("dctl_validate",
		mcplib.WithDescription(`Check DCTL script text for a transform function, parameter declarations and common syntax problems.`),
		mcplib.WithString("content",
			mcplib.Required(),
			mcplib.Description("Full DCTL script text"),
		),
		mcplib.WithString("name",
			mcplib.Description("Optional file name, checked for the .dctl extension and size limit"),
		),
	)
	srv.AddTool(validateTool, t.handleValidate)
}

func (t *Tools) handleParse(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	result := t.parser.Parse(content)
	return jsonResult(map[string]interface{}{
		"result":      result,
		"summary":     parser.Summary(result),
		"suggestions": parser.Suggest(result),
	})
}

func (t *Tools) handleGenerate(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	raw, err := request.RequireString("parameters")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	params, err := param.DecodeParameters([]byte(raw))
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	code, err := generator.Build(params)
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	return mcplib.NewToolResultText(code), nil
}

func (t *Tools) handleEdit(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("edits")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	var edits map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &edits); err != nil {
		return mcplib.NewToolResultError(fmt.Sprintf("edits must be a JSON object: %v", err)), nil
	}

	session := roundtrip.NewSession(t.parser)
	session.Load(content)

	names := make([]string, 0, len(edits))
	for name := range edits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := session.Set(name, fmt.Sprint(edits[name])); err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
	}

	return mcplib.NewToolResultText(session.ModifiedCode()), nil
}

func (t *Tools) handleValidate(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}

	out := map[string]interface{}{
		"validation": dctlfile.ValidateContent(content),
	}
	if name := request.GetString("name", ""); name != "" {
		if err := t.limits.ValidateFile(name, int64(len(content))); err != nil {
			out["fileError"] = err.Error()
		}
	}
	return jsonResult(out)
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcplib.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
