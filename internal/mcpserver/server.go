// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the blogging client as tools over stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scrawl/internal/detail"
	"github.com/starford/scrawl/internal/feed"
	"github.com/starford/scrawl/internal/remote"
	"github.com/starford/scrawl/internal/toggle"
	"github.com/starford/scrawl/internal/validate"
)

// Server wraps the MCP server with blogging tools. All tools run through
// the same controllers as the CLI, so auth and refetch semantics match.
type Server struct {
	mcp     *server.MCPServer
	api     *remote.Client
	feed    *feed.Controller
	detail  *detail.Controller
	toggles *toggle.Toggler
}

// New creates an MCP server with all tools registered.
func New(api *remote.Client, feedCtl *feed.Controller, detailCtl *detail.Controller, toggles *toggle.Toggler) *Server {
	s := &Server{mcp: nil, api: api, feed: feedCtl, detail: detailCtl, toggles: toggles}

	s.mcp = server.NewMCPServer(
		"Scrawl",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Search the blog's post feed. Returns the first page of matches."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term matched against title and content")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("list_feed",
		mcp.WithDescription("List one page of the blog's post feed."),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
	), s.listFeed)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post and its comments."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Post id")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Publish a new post. Requires an active session "+
			"(log in with the scrawl CLI first). Title is limited to 255 "+
			"characters; content must be at least 10."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Post body")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("toggle_like",
		mcp.WithDescription("Flip the current user's like on a post. Requires an active session."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Post id")),
	), s.toggleLike)

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

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.feed.Search(ctx, query)
	if ferr := s.feed.Err(); ferr != nil {
		return mcp.NewToolResultError(ferr.Error()), nil
	}
	out, _ := json.MarshalIndent(s.feed.Snapshot(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := 1
	if p, err := req.RequireInt("page"); err == nil && p > 0 {
		page = p
	}
	s.feed.Load(ctx, page, "")
	if ferr := s.feed.Err(); ferr != nil {
		return mcp.NewToolResultError(ferr.Error()), nil
	}
	out, _ := json.MarshalIndent(s.feed.Snapshot(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.detail.Load(ctx, id)
	if derr := s.detail.Err(); derr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("post %d not available: %v", id, derr)), nil
	}
	payload := map[string]any{
		"post":     s.detail.Current(),
		"comments": s.detail.Comments(),
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := validate.PostDraft(title, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.api.CreatePost(ctx, title, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created post %d: %s", post.ID, post.Title)), nil
}

func (s *Server) toggleLike(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.detail.Load(ctx, id)
	if derr := s.detail.Err(); derr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("post %d not available: %v", id, derr)), nil
	}
	if err := s.toggles.ToggleLike(ctx, s.detail, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p := s.detail.Current()
	if p == nil {
		return mcp.NewToolResultText("toggled"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("post %d: liked=%t, likes=%d", p.ID, p.IsLiked, p.LikesCount)), nil
}
