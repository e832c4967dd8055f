package webhook

import (
	"net/http"
	"sort"
	"strings"

	"github.com/oracle-dashboard/webhooks/payment"
)

// Provider verifies and decodes the webhook deliveries of one payment processor.
type Provider interface {
	// Name returns the provider name, used as the webhook route segment.
	Name() payment.Provider
	// SignatureHeader returns the name of the header carrying the body signature.
	SignatureHeader() string
	// Verify returns ErrInvalidSignature unless the body is signed with the provider secret.
	Verify(body []byte, header http.Header) error
	// Decode parses the body into a normalized payment event.
	// Errors wrap ErrDecode.
	Decode(body []byte) (payment.Event, error)
	// Ack returns the acknowledgement body the provider expects.
	Ack() interface{}
}

// Registry holds the supported providers by name.
type Registry struct {
	providers map[payment.Provider]Provider
}

// NewRegistry returns a registry of the given providers.
// Nil providers are skipped, a later provider replaces an earlier one with the same name.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[payment.Provider]Provider, len(providers))}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	return r
}

// Lookup returns the provider with the given name or ErrUnknownProvider.
func (r *Registry) Lookup(name string) (Provider, error) {
	if r == nil {
		return nil, ErrUnknownProvider
	}
	p, ok := r.providers[payment.Provider(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// Names returns the sorted names of the registered providers.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// verifyHeader is the shared HMAC-SHA-512 check of both providers.
func verifyHeader(body []byte, header http.Header, name, secret string) error {
	if !VerifySignature(body, header.Get(name), secret) {
		return ErrInvalidSignature
	}
	return nil
}
