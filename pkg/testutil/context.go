package testutil

import (
	"context"
	"time"

	"orgbook/pkg/requestcontext"

	id "orgbook/pkg/domain"
)

// BatchContext builds a context carrying the workspace scope and a fixed
// batch time, the way a host application's middleware would populate it.
func BatchContext(ws id.WorkspaceID, at time.Time) context.Context {
	ctx := requestcontext.WithWorkspaceID(context.Background(), ws)
	return requestcontext.WithTime(ctx, at)
}
