// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido file operations for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/fileservice"
	"github.com/starford/raido/internal/journal"
)

// recentLimit caps recent_changes listings.
const recentLimit = 20

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *fileservice.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *fileservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file resolved through the configured search path."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File name or relative path (e.g. cfg/app.ini)")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Create or replace a file under the write directory. "+
			"Missing parent directories are created automatically. Paths containing '..' "+
			"are rejected. Read the rules first via the get_path_rules tool or the "+
			"raido://path-rules resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target path relative to the write directory")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full file content")),
	), s.writeFile)

	s.mcp.AddTool(mcp.NewTool("append_file",
		mcp.WithDescription("Append text to a file under the write directory, creating it if missing."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target path relative to the write directory")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to append")),
	), s.appendFile)

	s.mcp.AddTool(mcp.NewTool("remove_path",
		mcp.WithDescription("Delete a file or empty directory under the write directory."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target path relative to the write directory")),
	), s.removePath)

	s.mcp.AddTool(mcp.NewTool("make_dir",
		mcp.WithDescription("Create a directory under the write directory, including missing parents. "+
			"Fails if the directory already exists."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory path relative to the write directory")),
	), s.makeDir)

	s.mcp.AddTool(mcp.NewTool("stat_path",
		mcp.WithDescription("Resolve a name through the search path and return its type, size and modification time."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File name or relative path")),
	), s.statPath)

	s.mcp.AddTool(mcp.NewTool("recent_changes",
		mcp.WithDescription("List recently journaled mutations, newest first."),
		mcp.WithString("path", mcp.Description("Optional: only entries touching this path")),
	), s.recentChanges)

	s.mcp.AddTool(mcp.NewTool("get_path_rules",
		mcp.WithDescription("Returns the Raido path resolution rules. "+
			"Call this before writing files to understand how paths resolve."),
	), s.getPathRules)

	s.mcp.AddTool(mcp.NewTool("fetch_remote",
		mcp.WithDescription("Download a remote file (http/https URL or base64 data URI) "+
			"into the write directory."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL or data URI")),
		mcp.WithString("path", mcp.Description("Optional target path; derived from the URL when omitted")),
	), s.fetchRemote)

	// Resource: path resolution rules.
	s.mcp.AddResource(
		mcp.NewResource("raido://path-rules", "Path Resolution Rules",
			mcp.WithResourceDescription("How names resolve through the search path and write directory."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPathRulesResource,
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

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.Read(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) writeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	receipt, err := s.svc.Write(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(receipt, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) appendFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	receipt, err := s.svc.Append(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(receipt, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) removePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", path)), nil
}

func (s *Server) makeDir(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Mkdir(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) statPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stat, err := s.svc.Stat(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(stat, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) recentChanges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := ""
	if p, err := req.RequireString("path"); err == nil {
		path = p
	}

	var (
		entries []journal.Entry
		err     error
	)
	if path != "" {
		entries, err = s.svc.History(ctx, path, recentLimit)
	} else {
		entries, err = s.svc.Recent(ctx, recentLimit)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no recorded changes"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPathRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PathRules), nil
}

func (s *Server) readPathRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://path-rules",
			MIMEType: "text/markdown",
			Text:     PathRules,
		},
	}, nil
}
