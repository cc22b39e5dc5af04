package channel

import "context"

// Channel delivers one message body to one subscriber. Implementations
// fail with transport or recipient-unreachable errors that callers
// contain per subscriber.
type Channel interface {
	Send(ctx context.Context, subscriberID int64, text string) error
}
