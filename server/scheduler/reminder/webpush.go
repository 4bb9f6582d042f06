package reminder

import (
	"context"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/pkg/errors"

	"github.com/hablaai/habla/store"
)

// Pusher delivers a payload to one push subscription.
type Pusher interface {
	Send(ctx context.Context, sub *store.PushSubscription, payload []byte) error
}

// PushError is a push delivery failure carrying the endpoint's HTTP status.
type PushError struct {
	StatusCode int
}

func (e *PushError) Error() string {
	return http.StatusText(e.StatusCode)
}

// IsGone reports whether err means the push endpoint no longer exists
// and its subscription should be deleted.
func IsGone(err error) bool {
	var pushErr *PushError
	if errors.As(err, &pushErr) {
		return pushErr.StatusCode == http.StatusNotFound || pushErr.StatusCode == http.StatusGone
	}
	return false
}

// VAPIDConfig identifies the application server to push services.
type VAPIDConfig struct {
	// Subject is a mailto: or https: URL identifying the sender.
	Subject    string
	PublicKey  string
	PrivateKey string
}

// WebPusher is a Pusher backed by the Web Push protocol.
type WebPusher struct {
	vapid VAPIDConfig
	ttl   int
}

// NewWebPusher creates a Web Push Pusher with the given VAPID identity.
func NewWebPusher(vapid VAPIDConfig) *WebPusher {
	return &WebPusher{vapid: vapid, ttl: 300}
}

// Send delivers the payload to the subscription's endpoint.
// Non-2xx responses become a PushError with the endpoint's status.
func (p *WebPusher) Send(ctx context.Context, sub *store.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      p.vapid.Subject,
		VAPIDPublicKey:  p.vapid.PublicKey,
		VAPIDPrivateKey: p.vapid.PrivateKey,
		TTL:             p.ttl,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send push notification")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &PushError{StatusCode: resp.StatusCode}
	}
	return nil
}
