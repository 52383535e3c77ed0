package cookie

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/quantum-go/quantum/option"
)

var ErrInvalidEncoding = errors.New("cookie value is not valid base64")

// Cookie stores values base64 encoded in a Storage.
type Cookie struct {
	storage  Storage
	defaults Attributes
}

func New(storage Storage, defaults Attributes) *Cookie {
	return &Cookie{storage: storage, defaults: defaults}
}

type SetOption func(*Attributes)

// WithMaxAge sets the lifetime in seconds.
func WithMaxAge(seconds int) SetOption {
	return func(a *Attributes) {
		a.MaxAge = seconds
	}
}

func WithPath(path string) SetOption {
	return func(a *Attributes) {
		a.Path = path
	}
}

func WithDomain(domain string) SetOption {
	return func(a *Attributes) {
		a.Domain = domain
	}
}

func WithSecure(secure bool) SetOption {
	return func(a *Attributes) {
		a.Secure = secure
	}
}

func WithHTTPOnly(httpOnly bool) SetOption {
	return func(a *Attributes) {
		a.HTTPOnly = httpOnly
	}
}

func WithSameSite(mode http.SameSite) SetOption {
	return func(a *Attributes) {
		a.SameSite = mode
	}
}

// ParseSameSite maps "lax", "strict" and "none" to http.SameSite. Anything
// else leaves the attribute out.
func ParseSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	}
	return http.SameSiteDefaultMode
}

// Get returns the decoded value, or Nothing when the cookie is not set.
func (c *Cookie) Get(key string) (option.Option[string], error) {
	raw, ok := c.storage.Get(key)
	if !ok {
		return option.Nothing[string](), nil
	}
	value, err := decode(raw)
	if err != nil {
		return option.Nothing[string](), errors.Wrap(err, key)
	}
	return option.Some(value), nil
}

func (c *Cookie) Set(key, value string, opts ...SetOption) {
	attrs := c.defaults
	for _, opt := range opts {
		opt(&attrs)
	}
	c.storage.Set(key, base64.StdEncoding.EncodeToString([]byte(value)), attrs)
}

func (c *Cookie) Has(key string) bool {
	_, ok := c.storage.Get(key)
	return ok
}

func (c *Cookie) Delete(key string) {
	if c.Has(key) {
		c.storage.Delete(key, c.defaults)
	}
}

// All returns every cookie decoded. One undecodable value fails the call.
func (c *Cookie) All() (map[string]string, error) {
	all := c.storage.All()
	decoded := make(map[string]string, len(all))
	for k, raw := range all {
		value, err := decode(raw)
		if err != nil {
			return nil, errors.Wrap(err, k)
		}
		decoded[k] = value
	}
	return decoded, nil
}

// Flush deletes every cookie.
func (c *Cookie) Flush() {
	for k := range c.storage.All() {
		c.storage.Delete(k, c.defaults)
	}
}

func decode(raw string) (string, error) {
	value, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	return string(value), nil
}
