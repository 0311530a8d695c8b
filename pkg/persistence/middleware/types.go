// Package middleware provides StateStore wrappers that change how sessions are
// persisted without changing what callers see.
package middleware

import "github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies middlewares so the first one listed is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
