// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/ejchub/internal/app/store/docstore"
)

// DBDeps holds database/back-end dependencies for the app.
// Store is nil when no document store is configured.
type DBDeps struct {
	Store *docstore.Handle
}
