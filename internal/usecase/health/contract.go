package health

import "context"

// Pinger is one probed dependency. Ping must honour ctx cancellation or the
// probe timeout has no effect.
type Pinger interface {
	Ping(ctx context.Context) error
}
