// Package notify signals that a content path changed so cached views can be
// refreshed. Mutating services call it after their transaction commits.
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

type ChangeNotifier interface {
	Changed(ctx context.Context, path string) error
}

// Nop discards change signals.
type Nop struct{}

func (Nop) Changed(context.Context, string) error { return nil }

// Webhook posts {"path": ...} to a revalidation endpoint.
type Webhook struct {
	client *resty.Client
	url    string
}

func NewWebhook(url, token string) *Webhook {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Webhook{client: client, url: url}
}

func (w *Webhook) Changed(ctx context.Context, path string) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"path": path}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("revalidate %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("revalidate %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}
	return nil
}

var (
	mu      sync.RWMutex
	current ChangeNotifier = Nop{}
)

// Init installs the process-wide notifier. An empty url selects Nop.
func Init(url, token string) {
	mu.Lock()
	defer mu.Unlock()
	if url == "" {
		current = Nop{}
		log.Println("[NOTIFY] REVALIDATE_URL not set, change notifications disabled")
		return
	}
	current = NewWebhook(url, token)
	log.Printf("[NOTIFY] change notifications -> %s", url)
}

func Default() ChangeNotifier {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
