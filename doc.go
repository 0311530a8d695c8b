/*
Package barista is the core of a café ordering assistant: it reads one free-text
customer message at a time and answers it, keeping a cart and a conversation
memory per session.

Every message goes through the same pipeline. The intent classifier labels it
(MENU, ORDER, CONFIRMATION, GREETING or CLARIFY), the router picks the handler for
that intent, the handler reads the menu and the session and proposes cart
changes, and the router commits the cart and memory together before composing
the reply. An optional completion provider makes answers conversational; without
one, every handler has a rule-based path.

# Usage

	assistant := barista.New(nil, nil)

	res, err := assistant.Process(ctx, "session-123", "add 2 lattes and a croissant")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Response)

The HTTP, WebSocket, MCP and CLI surfaces in this module are thin adapters over
the same Process call.
*/
package barista
