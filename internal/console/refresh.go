package console

import "context"

// RefreshPolicy decides how an entity store's cache catches up after a
// successful write. refetch reloads the collection from the backend and
// publishes it; a policy that skips the call leaves the cache at its last
// fetch, and the store clears its loading flag either way.
type RefreshPolicy interface {
	AfterWrite(ctx context.Context, refetch func(context.Context))
}

// FullRefetch reloads the whole collection after every write. It is the
// default policy for every store; an optimistic strategy can replace it
// without the write call sites changing.
type FullRefetch struct{}

func (FullRefetch) AfterWrite(ctx context.Context, refetch func(context.Context)) {
	refetch(ctx)
}
