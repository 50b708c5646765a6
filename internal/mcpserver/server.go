// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes ChefKnight content and sync tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/chefknight/internal/apperr"
	"github.com/starford/chefknight/internal/wikiservice"
)

// Resource URIs.
const (
	CategoriesURI     = "chefknight://categories"
	DocumentFormatURI = "chefknight://document-format"
)

// Server wraps the MCP server with ChefKnight tools.
type Server struct {
	mcp *server.MCPServer
	svc *wikiservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *wikiservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ChefKnight",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Report category folders, documents per category and git state of the content repository."),
	), s.getStatus)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the known content categories with descriptions and document counts."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List document stems in a category."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name, e.g. characters")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a document's frontmatter metadata and markdown body."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("stem", mcp.Required(), mcp.Description("File name without the .md extension")),
		mcp.WithBoolean("render", mcp.Description("Also return the body rendered as HTML")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("pull",
		mcp.WithDescription("Fetch and merge from the configured git remote."),
	), s.pull)

	s.mcp.AddTool(mcp.NewTool("push",
		mcp.WithDescription("Commit every working-tree change and push it to the configured git remote. "+
			"Without a remote the commit stays local."),
		mcp.WithString("message", mcp.Description("Commit message (default \"Update via UI\")")),
	), s.push)

	s.mcp.AddTool(mcp.NewTool("sync_history",
		mcp.WithDescription("Recent pull and push outcomes, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 50)")),
	), s.syncHistory)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the document format contract: layout, frontmatter rules and wikilinks."),
	), s.getDocumentFormat)

	s.mcp.AddResource(
		mcp.NewResource(CategoriesURI, "Categories",
			mcp.WithResourceDescription("Known content categories as JSON."),
			mcp.WithMIMEType("application/json"),
		),
		s.readCategoriesResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(DocumentFormatURI, "Document Format Contract",
			mcp.WithResourceDescription("Canonical layout of ChefKnight markdown documents."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Status(ctx))
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cats)
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stems, err := s.svc.ListDocuments(ctx, cat)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCategory) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", cat)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stems)
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stem, err := req.RequireString("stem")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, cat, stem, req.GetBool("render", false))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", cat, stem)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(doc)
}

func (s *Server) pull(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Pull(ctx))
}

func (s *Server) push(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Push(ctx, req.GetString("message", "")))
}

func (s *Server) syncHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.History(ctx, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) getDocumentFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readCategoriesResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(cats, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CategoriesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readDocumentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DocumentFormatURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
