package notify

import "context"

// Notifier hands events to the delivery queue. Every method returns
// immediately; delivery outcome is never surfaced to the caller.
type Notifier struct {
	client *Client
	queue  *Queue
}

func NewNotifier(client *Client, queue *Queue) *Notifier {
	return &Notifier{client: client, queue: queue}
}

func (n *Notifier) Welcome(email, nickname, code string) {
	n.queue.Submit(func(ctx context.Context) error {
		return n.client.SendWelcome(ctx, email, nickname, code)
	})
}

func (n *Notifier) AccessChanged(docID, authorID uint64, role string) {
	n.queue.Submit(func(ctx context.Context) error {
		return n.client.SendAccessChange(ctx, docID, authorID, role)
	})
}

func (n *Notifier) Kicked(docID, authorID uint64) {
	n.queue.Submit(func(ctx context.Context) error {
		return n.client.SendKick(ctx, docID, authorID)
	})
}

// Shutdown drains the queue.
func (n *Notifier) Shutdown() {
	n.queue.Shutdown()
}
