// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package recall

import "context"

// Recaller retrieves scored entries for a query. Implementations fail by
// returning an error; callers that cannot tolerate a failed source must
// degrade to an empty result at the call site.
type Recaller interface {
	Recall(ctx context.Context, q Query) (*Result, error)
}

// Rememberer persists new memories.
type Rememberer interface {
	Remember(ctx context.Context, req StoreRequest) (*MemoryEntry, error)
}

// Forgetter removes memories permanently. Returns false when no entry with
// the given id exists.
type Forgetter interface {
	Forget(ctx context.Context, id string) (bool, error)
}

// Client is the full memory-service capability surface consumed by the
// engine and the HTTP layer.
type Client interface {
	Recaller
	Rememberer
	Forgetter
}
