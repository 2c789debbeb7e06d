// Package mcp exposes the archive build tools over the Model Context Protocol.
package mcp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"practiso-archive-service/internal/app"
	"practiso-archive-service/internal/build"
)

// defaultSessionID groups tool calls that arrive without a transport session
// (stdio) into one build session, matching the one-session-per-run behavior.
const defaultSessionID = "default"

// Server wraps the MCP server with the archive session manager.
type Server struct {
	manager *app.SessionManager
	server  *mcp.Server
}

func NewServer(manager *app.SessionManager, version string) *Server {
	s := &Server{manager: manager}

	impl := &mcp.Implementation{
		Name:    "practiso-archive-tools",
		Version: version,
	}
	s.server = mcp.NewServer(impl, nil)
	s.registerTools()
	return s
}

// Run serves the MCP server on stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "begin_quiz",
		Description: "Ask the builder to begin a quiz. Use this tool ONLY IF either: " +
			"1. the last quiz has been ended; 2. it's the first time use.",
	}, s.handleBeginQuiz)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "end_quiz",
		Description: "Ask the builder to end the current quiz, making the future incoming " +
			"content go in a separate one. Use only if there's an ongoing quiz.",
	}, s.handleEndQuiz)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "add_text",
		Description: "Ask the builder to add a piece of text to the ongoing quiz. " +
			"Use only if there's currently an ongoing quiz.",
	}, s.handleAddText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "save",
		Description: "Save your edit into a file. Use only if the builder is NOT empty, " +
			"AND the last quiz has been ended. `path` must be absolute, and the file " +
			"extension must be `.psarchive`.",
	}, s.handleSave)
}

// BeginQuizArgs is the input for begin_quiz.
type BeginQuizArgs struct {
	Name string `json:"name,omitempty" jsonschema:"optional name for the new quiz"`
}

// EndQuizArgs is the input for end_quiz.
type EndQuizArgs struct{}

// AddTextArgs is the input for add_text.
type AddTextArgs struct {
	Content string `json:"content" jsonschema:"text content to append to the ongoing quiz"`
}

// SaveArgs is the input for save.
type SaveArgs struct {
	Path string `json:"path" jsonschema:"absolute destination path ending in .psarchive"`
}

func (s *Server) handleBeginQuiz(ctx context.Context, req *mcp.CallToolRequest, args BeginQuizArgs) (*mcp.CallToolResult, any, error) {
	if err := s.manager.BeginQuiz(ctx, sessionID(req), args.Name); err != nil {
		return nil, nil, err
	}
	return textResult("Quiz begun. " + availableActions([]string{"add content to the quiz"})), nil, nil
}

func (s *Server) handleEndQuiz(ctx context.Context, req *mcp.CallToolRequest, _ EndQuizArgs) (*mcp.CallToolResult, any, error) {
	if err := s.manager.EndQuiz(ctx, sessionID(req)); err != nil {
		return nil, nil, err
	}
	return textResult("Quiz ended. " + availableActions([]string{
		"save the all quiz(zes) into an archive file",
		"begin another quiz",
	})), nil, nil
}

func (s *Server) handleAddText(ctx context.Context, req *mcp.CallToolRequest, args AddTextArgs) (*mcp.CallToolResult, any, error) {
	head, err := s.manager.AddText(ctx, sessionID(req), args.Content)
	if err != nil {
		return nil, nil, err
	}
	actions := []string{"add more content"}
	if head == build.LevelQuiz {
		actions = append(actions, "end the quiz")
	}
	return textResult("Text added. " + availableActions(actions)), nil, nil
}

func (s *Server) handleSave(ctx context.Context, req *mcp.CallToolRequest, args SaveArgs) (*mcp.CallToolResult, any, error) {
	record, err := s.manager.Save(ctx, sessionID(req), args.Path)
	if err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Your edit has been saved to `%s`", record.Path)), nil, nil
}

func sessionID(req *mcp.CallToolRequest) string {
	if req != nil && req.Session != nil && req.Session.ID() != "" {
		return req.Session.ID()
	}
	return defaultSessionID
}

func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
