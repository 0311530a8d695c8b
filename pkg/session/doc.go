/*
Package session implements session access orchestration.

It serializes every operation on the same session ID (a second message for a session
waits for the first to finish) while operations on different sessions run fully in
parallel. Optionally it also takes a distributed lock so several replicas sharing one
StateStore keep the same guarantee.
*/
package session
