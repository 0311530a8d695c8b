/*
Package router implements the conversation workflow.

Each message makes exactly one pass through the state machine:

	START -> INTENT_CLASSIFIED -> MENU | ORDER | CONFIRMATION | GREETING | CLARIFY -> END

The router loads the session under its lock, classifies the message against the
relevant memory, runs the selected handler and applies the cart mutations the handler
returned. The reply is composed, the exchange is appended to memory and the session
is saved in one step. A handler failure or panic is answered with an apology and
leaves the cart untouched; a canceled context commits nothing.
*/
package router
