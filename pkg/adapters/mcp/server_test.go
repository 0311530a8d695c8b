package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/cart"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/domain"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/router"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

func newServer(t *testing.T, opts ...Option) (*Server, *session.Manager) {
	t.Helper()
	catalog := memadapter.NewDefaultCatalog()
	sessions := session.NewManager(memadapter.NewStore())
	rt := router.New(catalog, sessions)

	s := NewServer(Service{
		Conversation: rt,
		Catalog:      catalog,
		Ledger:       rt.Ledger(),
		Sessions:     sessions,
		Memory:       memory.NewStore(sessions),
	}, opts...)

	rpc(t, s, "initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0.0"},
	})
	return s, sessions
}

// rpc sends one JSON-RPC request and returns its result.
func rpc(t *testing.T, s *Server, method string, params any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), raw)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))
	require.Nil(t, envelope.Error, "rpc %s failed", method)
	return envelope.Result
}

type toolResult struct {
	IsError bool `json:"isError"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StructuredContent json.RawMessage `json:"structuredContent"`
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) toolResult {
	t.Helper()
	var res toolResult
	require.NoError(t, json.Unmarshal(rpc(t, s, "tools/call", map[string]any{"name": name, "arguments": args}), &res))
	return res
}

func TestListTools(t *testing.T) {
	s, _ := newServer(t)

	var res struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rpc(t, s, "tools/list", map[string]any{}), &res))

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"chat", "get_menu", "get_cart", "clear_session"}, names)
}

func TestChatTool(t *testing.T) {
	s, _ := newServer(t)

	res := callTool(t, s, "chat", map[string]any{"message": "add 2 lattes"})
	require.False(t, res.IsError)

	var chat ChatResponse
	require.NoError(t, json.Unmarshal(res.StructuredContent, &chat))
	require.NotEmpty(t, chat.SessionID)
	assert.Equal(t, domain.IntentOrder, chat.Intent)
	assert.InDelta(t, 9.72, chat.Total, 1e-9)

	res = callTool(t, s, "chat", map[string]any{"message": "confirm", "session_id": chat.SessionID})
	require.NoError(t, json.Unmarshal(res.StructuredContent, &chat))
	assert.Equal(t, domain.IntentConfirmation, chat.Intent)
	assert.Empty(t, chat.CartState)
}

func TestChatTool_RejectsOversizedInput(t *testing.T) {
	s, _ := newServer(t, WithMaxInputSize(8))

	res := callTool(t, s, "chat", map[string]any{"message": "add a latte and a mocha", "session_id": "s1"})
	assert.True(t, res.IsError)
}

func TestMenuAndCartTools(t *testing.T) {
	s, _ := newServer(t)

	var menu MenuResponse
	require.NoError(t, json.Unmarshal(callTool(t, s, "get_menu", map[string]any{"category": "Food"}).StructuredContent, &menu))
	require.Len(t, menu.Items, 1)
	assert.Equal(t, "avocado toast", menu.Items[0].Key)

	callTool(t, s, "chat", map[string]any{"message": "add an avocado toast", "session_id": "s1"})

	var view cart.View
	require.NoError(t, json.Unmarshal(callTool(t, s, "get_cart", map[string]any{"session_id": "s1"}).StructuredContent, &view))
	assert.Equal(t, 1, view.Count)
	assert.Equal(t, domain.Money(648), view.Total)
}

func TestClearSessionTool(t *testing.T) {
	s, sessions := newServer(t)
	ctx := context.Background()
	callTool(t, s, "chat", map[string]any{"message": "add a latte", "session_id": "s1"})

	res := callTool(t, s, "clear_session", map[string]any{"session_id": "s1", "scope": "memory"})
	require.False(t, res.IsError)
	sess, err := sessions.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, sess.Memory)
	assert.Len(t, sess.Cart, 1)

	res = callTool(t, s, "clear_session", map[string]any{"session_id": "s1"})
	require.False(t, res.IsError)
	_, err = sessions.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	res = callTool(t, s, "clear_session", map[string]any{"session_id": "s1", "scope": "everything"})
	assert.True(t, res.IsError)
}

func TestResources(t *testing.T) {
	s, _ := newServer(t)
	callTool(t, s, "chat", map[string]any{"message": "add a croissant", "session_id": "s1"})

	read := func(uri string) string {
		var res struct {
			Contents []struct {
				URI  string `json:"uri"`
				Text string `json:"text"`
			} `json:"contents"`
		}
		require.NoError(t, json.Unmarshal(rpc(t, s, "resources/read", map[string]any{"uri": uri}), &res))
		require.Len(t, res.Contents, 1)
		assert.Equal(t, uri, res.Contents[0].URI)
		return res.Contents[0].Text
	}

	var items []domain.CatalogItem
	require.NoError(t, json.Unmarshal([]byte(read(MenuURI)), &items))
	assert.Len(t, items, len(domain.DefaultCatalog()))

	var view cart.View
	require.NoError(t, json.Unmarshal([]byte(read("barista://sessions/s1/cart")), &view))
	assert.Equal(t, []cart.ViewLine{{Key: "croissant", Name: "Croissant", Quantity: 1, UnitPrice: 350, LineTotal: 350}}, view.Items)
}

func TestDecodeArgs(t *testing.T) {
	var in chatArgs
	require.NoError(t, decodeArgs(map[string]any{"message": "hi", "session_id": 42}, &in))
	assert.Equal(t, chatArgs{Message: "hi", SessionID: "42"}, in)

	var bad menuArgs
	assert.Error(t, decodeArgs(map[string]any{"category": []any{map[string]any{}}}, &bad))
}
