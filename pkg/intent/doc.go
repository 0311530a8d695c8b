/*
Package intent classifies user messages into a domain.Intent.

Classification is a pure, deterministic function of the message and the recent
conversation: an ordered table of rules is evaluated top to bottom and the first
match wins. Rule order is the tie-break policy. In particular add/order verbs are
checked before confirmation verbs, so "I'll order now" is an ORDER.

Each rule carries a fixed confidence. Results below ClarifyThreshold are flagged
NeedsClarification and the router sends them to the clarification handler.
*/
package intent
