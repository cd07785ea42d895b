package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"

	"aiden/internal/assistant"
	"aiden/internal/enrich"
	"aiden/internal/persona"
)

const defaultRelatedLimit = 5

// CommandParams are the arguments of aiden_command.
type CommandParams struct {
	Command string `json:"command" mcp:"the user command, in Portuguese or English"`
}

// RelatedParams are the arguments of aiden_related.
type RelatedParams struct {
	Query string `json:"query" mcp:"text to match against previous searches"`
	Limit int    `json:"limit,omitempty" mcp:"maximum number of records (default: 5)"`
}

// AidenMCPServer routes tool calls into one long-lived assistant session.
// A session ended by an exit phrase is replaced on the next command.
type AidenMCPServer struct {
	kit      *assistant.Kit
	persona  persona.Persona
	enricher *enrich.Enricher

	mu      sync.Mutex
	session *assistant.Assistant
}

func NewAidenMCPServer(kit *assistant.Kit, p persona.Persona, window int) *AidenMCPServer {
	s := &AidenMCPServer{kit: kit, persona: p}
	if kit.Store != nil {
		s.enricher = enrich.New(kit.Store, window)
	}
	return s
}

func (s *AidenMCPServer) Command(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[CommandParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	log.Printf("🛠️ MCP Server: command %q", args.Command)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.State() == assistant.Terminated {
		s.session = s.kit.NewSession(s.persona)
	}
	reply, err := s.session.Process(ctx, args.Command)
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ Command failed: %v", err)},
			},
		}, nil
	}
	sessionID := s.session.SessionID()
	if reply.Terminal {
		s.session = nil
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: reply.Text},
		},
		Meta: map[string]interface{}{
			"category":   reply.Category.Label(),
			"session_id": sessionID,
			"terminal":   reply.Terminal,
		},
	}, nil
}

func (s *AidenMCPServer) Related(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[RelatedParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	log.Printf("🔍 MCP Server: related records for %q", args.Query)

	if s.enricher == nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "❌ Document store is not configured"}},
		}, nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	res := s.enricher.FindRelated(ctx, args.Query, limit)
	if res.Err != nil {
		log.WithError(res.Err).Warn("⚠️ related lookup degraded")
	}

	var b strings.Builder
	if len(res.Records) == 0 {
		b.WriteString("No related records found.")
	} else {
		fmt.Fprintf(&b, "Found %d related records:\n", len(res.Records))
		for i, r := range res.Records {
			fmt.Fprintf(&b, "%d. [%s] %s (%s)\n   %s\n", i+1, r.Source, r.Query, r.Timestamp.Format("2006-01-02 15:04"), r.Result)
		}
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
		Meta: map[string]interface{}{
			"query": args.Query,
			"count": len(res.Records),
		},
	}, nil
}
