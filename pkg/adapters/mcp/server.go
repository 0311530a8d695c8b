// Package mcp exposes the assistant as a Model Context Protocol server, so an
// agent can take orders on a customer's behalf.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"

	"github.com/GenAICloudDevOps/AgenticBarista"
	"github.com/GenAICloudDevOps/AgenticBarista/internal/logging"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/runner"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// MenuURI is the resource holding the current menu.
const MenuURI = "barista://menu"

const cartTemplate = "barista://sessions/{session_id}/cart"

// ChatResponse aligns with the HTTP chat response.
type ChatResponse struct {
	SessionID     string                `json:"session_id" jsonschema_description:"Session to pass on the next call"`
	Response      string                `json:"response" jsonschema_description:"Reply to show the customer"`
	Intent        domain.Intent         `json:"intent" jsonschema_description:"MENU, ORDER, CONFIRMATION, GREETING or CLARIFY"`
	Confidence    float64               `json:"confidence"`
	CartState     []domain.CartLine     `json:"cart_state"`
	Total         float64               `json:"total" jsonschema_description:"Cart total including tax, or the confirmed order total"`
	ContentBlocks []domain.ContentBlock `json:"content_blocks"`
}

// MenuResponse lists menu items.
type MenuResponse struct {
	Items []domain.CatalogItem `json:"items"`
}

// Service groups the collaborators the MCP tools read from.
type Service struct {
	Conversation ports.Conversation
	Catalog      ports.Catalog
	Ledger       *cart.Ledger
	Sessions     *session.Manager
	Memory       *memory.Store
}

// Server wraps the assistant as an MCP server.
type Server struct {
	svc          Service
	mcpServer    *server.MCPServer
	logger       *slog.Logger
	maxInputSize int
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxInputSize sets the chat message limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// NewServer creates an MCP server with the chat, menu, cart and session tools.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("barista-mcp", strings.TrimSpace(barista.Version),
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, true),
			server.WithRecovery(),
			server.WithInstructions("You are ordering at a café for the user. Call get_menu to see what is available, "+
				"then send the user's words to chat. Reuse the session_id chat returns so the cart is kept."),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send one customer message to the barista and get the reply. Omit session_id to start a new order."),
		mcp.WithString("message", mcp.Required(), mcp.Description("What the customer says, e.g. 'add 2 lattes'")),
		mcp.WithString("session_id", mcp.Description("Session returned by a previous chat call")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	menuTool := mcp.NewTool("get_menu",
		mcp.WithDescription("List the available menu items with prices."),
		mcp.WithString("category", mcp.Description("Restrict to coffee, pastry or food")),
		mcp.WithOutputSchema[MenuResponse](),
	)
	s.mcpServer.AddTool(menuTool, mcp.NewStructuredToolHandler(s.handleMenu))

	cartTool := mcp.NewTool("get_cart",
		mcp.WithDescription("Show a session's cart with live prices, tax and total."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to inspect")),
		mcp.WithOutputSchema[cart.View](),
	)
	s.mcpServer.AddTool(cartTool, mcp.NewStructuredToolHandler(s.handleCart))

	s.mcpServer.AddTool(mcp.NewTool("clear_session",
		mcp.WithDescription("Forget a session. With scope 'memory' only the conversation is cleared and the cart is kept."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to clear")),
		mcp.WithString("scope", mcp.Description("'all' (default) or 'memory'"), mcp.Enum("all", "memory")),
	), s.handleClear)
}

type chatArgs struct {
	Message   string `mapstructure:"message"`
	SessionID string `mapstructure:"session_id"`
}

type menuArgs struct {
	Category string `mapstructure:"category"`
}

type sessionArgs struct {
	SessionID string `mapstructure:"session_id"`
	Scope     string `mapstructure:"scope"`
}

// decodeArgs maps loosely typed tool arguments onto a struct.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ChatResponse, error) {
	var in chatArgs
	if err := decodeArgs(args, &in); err != nil {
		return ChatResponse{}, err
	}
	if in.SessionID == "" {
		in.SessionID = uuid.NewString()
	}

	clean, err := runner.SanitizeInputLimit(in.Message, s.maxInputSize)
	if err != nil {
		s.logger.Warn("MCP chat: input rejected", "err", err, "size", len(in.Message))
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.svc.Conversation.Process(ctx, in.SessionID, clean)
	if err != nil {
		s.logger.Error("MCP chat failed", "session_id", in.SessionID, "err", err)
		return ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	return ChatResponse{
		SessionID:     in.SessionID,
		Response:      res.Response,
		Intent:        res.Intent,
		Confidence:    res.Confidence,
		CartState:     res.CartState,
		Total:         res.Total,
		ContentBlocks: res.ContentBlocks,
	}, nil
}

func (s *Server) handleMenu(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (MenuResponse, error) {
	var in menuArgs
	if err := decodeArgs(args, &in); err != nil {
		return MenuResponse{}, err
	}
	items, err := s.menu(ctx, strings.ToLower(in.Category))
	if err != nil {
		return MenuResponse{}, err
	}
	return MenuResponse{Items: items}, nil
}

func (s *Server) menu(ctx context.Context, category string) ([]domain.CatalogItem, error) {
	items, err := s.svc.Catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	if category == "" {
		return items, nil
	}
	filtered := make([]domain.CatalogItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			filtered = append(filtered, it)
		}
	}
	return filtered, nil
}

func (s *Server) handleCart(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (cart.View, error) {
	var in sessionArgs
	if err := decodeArgs(args, &in); err != nil {
		return cart.View{}, err
	}
	if in.SessionID == "" {
		return cart.View{}, domain.ErrEmptySessionID
	}
	return s.svc.Ledger.View(ctx, in.SessionID)
}

func (s *Server) handleClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in sessionArgs
	if err := decodeArgs(request.GetArguments(), &in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if in.SessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	switch in.Scope {
	case "memory":
		if err := s.svc.Memory.ClearSession(ctx, in.SessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Cleared conversation memory of %s; the cart was kept.", in.SessionID)), nil
	case "", "all":
		if err := s.svc.Sessions.Delete(ctx, in.SessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("clear failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Session %s cleared.", in.SessionID)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown scope %q", in.Scope)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(MenuURI, "Menu",
		mcp.WithResourceDescription("Available menu items with prices"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := s.menu(ctx, "")
		if err != nil {
			return nil, err
		}
		return jsonContents(MenuURI, items)
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(cartTemplate, "Session cart",
		mcp.WithTemplateDescription("A session's cart with live prices"),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		id := strings.TrimSuffix(strings.TrimPrefix(uri, "barista://sessions/"), "/cart")
		if id == "" || id == uri {
			return nil, fmt.Errorf("invalid cart uri %q", uri)
		}
		view, err := s.svc.Ledger.View(ctx, id)
		if err != nil {
			return nil, err
		}
		return jsonContents(uri, view)
	})
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
