// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the library catalog and the exchange-file engine to LLM
// clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ifcstep/internal/apperr"
	"github.com/starford/ifcstep/internal/fileservice"
	"github.com/starford/ifcstep/internal/index"
)

const formatURI = "ifcstep://exchange-format"

// Server wraps the MCP server with library tools.
type Server struct {
	mcp *server.MCPServer
	svc *fileservice.Service
}

// New creates a new MCP server with all library tools registered.
func New(svc *fileservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ifcstep",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List catalogued exchange files with their schema, entity count and problems."),
		mcp.WithString("schema", mcp.Description("Optional schema filter, e.g. IFC4")),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Full-text search over file names, entity names and keywords."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("find_entities",
		mcp.WithDescription("Find records across the library by keyword, GlobalId or name. "+
			"At least one filter is required."),
		mcp.WithString("keyword", mcp.Description("Entity keyword, e.g. IFCWALL")),
		mcp.WithString("global_id", mcp.Description("22-character IFC GlobalId")),
		mcp.WithString("name", mcp.Description("Case-insensitive name substring")),
		mcp.WithString("file", mcp.Description("Restrict to one library path")),
	), s.findEntities)

	s.mcp.AddTool(mcp.NewTool("read_entity",
		mcp.WithDescription("Read one record of a file: its text, arguments, references and referrers."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Library path, e.g. site/house.ifc")),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Instance id without the leading #")),
	), s.readEntity)

	s.mcp.AddTool(mcp.NewTool("get_referrers",
		mcp.WithDescription("List the ids of records in a file that reference the given instance."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Library path")),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Target instance id")),
	), s.getReferrers)

	s.mcp.AddTool(mcp.NewTool("verify_file",
		mcp.WithDescription("Parse a file, resolve every reference, decode known records and "+
			"check that it prints back byte for byte."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Library path")),
	), s.verifyFile)

	s.mcp.AddTool(mcp.NewTool("create_file",
		mcp.WithDescription("Store a new exchange file. Content MUST be a complete ISO-10303-21 file "+
			"that round trips. Read the contract first via the get_format_contract tool or the "+
			formatURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Library path ending in .ifc, .stp or .step")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Exchange file text")),
	), s.createFile)

	s.mcp.AddTool(mcp.NewTool("import_file",
		mcp.WithDescription("Download an exchange file from an http(s) URL or a base64 data URI "+
			"and store it in the library."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:application/p21;base64,... URI")),
		mcp.WithString("path", mcp.Description("Optional library path; derived from the URL when empty")),
	), s.importFile)

	s.mcp.AddTool(mcp.NewTool("get_format_contract",
		mcp.WithDescription("Returns the exchange file format contract. "+
			"Call this before creating files to ensure correct structure."),
	), s.getFormatContract)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Exchange Format Contract",
			mcp.WithResourceDescription("Rules every stored ISO-10303-21 file must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

// errorResult turns a service error into a tool error message.
func errorResult(path string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func requireID(req mcp.CallToolRequest) (uint64, error) {
	id, err := req.RequireFloat("id")
	if err != nil {
		return 0, err
	}
	if id < 1 || id != float64(uint64(id)) {
		return 0, fmt.Errorf("id must be a positive integer, got %v", id)
	}
	return uint64(id), nil
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.ListFiles(ctx, req.GetInt("limit", 0), req.GetInt("offset", 0), req.GetString("schema", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"files": items, "total": total}), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) findEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := index.EntityQuery{
		File:     req.GetString("file", ""),
		Keyword:  req.GetString("keyword", ""),
		GlobalID: req.GetString("global_id", ""),
		Name:     req.GetString("name", ""),
	}
	if q.Keyword == "" && q.GlobalID == "" && q.Name == "" {
		return mcp.NewToolResultError("one of keyword, global_id or name is required"), nil
	}
	ents, err := s.svc.FindEntities(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ents) == 0 {
		return mcp.NewToolResultText("no entities found"), nil
	}
	return jsonResult(ents), nil
}

func (s *Server) readEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ent, err := s.svc.GetEntity(ctx, path, id)
	if err != nil {
		return errorResult(fmt.Sprintf("%s #%d", path, id), err), nil
	}
	return jsonResult(ent), nil
}

func (s *Server) getReferrers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs, err := s.svc.Referrers(ctx, path, id)
	if err != nil {
		return errorResult(path, err), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("no referrers found"), nil
	}
	lines := make([]string, len(refs))
	for i, r := range refs {
		lines[i] = fmt.Sprintf("#%d", r)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) verifyFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := s.svc.Verify(ctx, path)
	if err != nil {
		return errorResult(path, err), nil
	}
	return jsonResult(rep), nil
}

func (s *Server) createFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateFile(ctx, path, []byte(content)); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) && !errors.Is(err, apperr.ErrInvalid) {
			return mcp.NewToolResultError(fmt.Sprintf("file already exists: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) getFormatContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatContract), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     FormatContract,
		},
	}, nil
}
