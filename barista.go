package barista

import (
	memadapter "github.com/GenAICloudDevOps/AgenticBarista/pkg/adapters/memory"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/ports"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/router"
	"github.com/GenAICloudDevOps/AgenticBarista/pkg/session"
)

// Version is overwritten at build time with -ldflags "-X".
var Version = "dev"

// New creates an assistant over catalog with sessions kept in store.
// A nil catalog serves the house menu and a nil store keeps sessions in memory.
func New(catalog ports.Catalog, store ports.StateStore, opts ...router.Option) *router.Router {
	if catalog == nil {
		catalog = memadapter.NewDefaultCatalog()
	}
	if store == nil {
		store = memadapter.NewStore()
	}
	return router.New(catalog, session.NewManager(store), opts...)
}
