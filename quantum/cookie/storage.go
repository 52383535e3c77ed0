package cookie

import (
	"net/http"
	"sync"
	"time"
)

// Attributes are sent along with a cookie. A zero MaxAge leaves the cookie a
// session cookie.
type Attributes struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// Storage is the cookie jar of one request. Values are stored as given.
type Storage interface {
	Get(name string) (string, bool)
	Set(name, value string, attrs Attributes)
	Delete(name string, attrs Attributes)
	All() map[string]string
}

// MapStorage keeps cookies in memory.
type MapStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMapStorage(initial map[string]string) *MapStorage {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MapStorage{values: values}
}

func (s *MapStorage) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

func (s *MapStorage) Set(name, value string, _ Attributes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

func (s *MapStorage) Delete(name string, _ Attributes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
}

func (s *MapStorage) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make(map[string]string, len(s.values))
	for k, v := range s.values {
		all[k] = v
	}
	return all
}

// HTTPStorage reads the cookies of a request and answers changes with
// Set-Cookie headers. Changes are visible to later reads of the same request.
type HTTPStorage struct {
	w      http.ResponseWriter
	values *MapStorage
}

func NewHTTPStorage(w http.ResponseWriter, r *http.Request) *HTTPStorage {
	values := map[string]string{}
	for _, c := range r.Cookies() {
		values[c.Name] = c.Value
	}
	return &HTTPStorage{w: w, values: NewMapStorage(values)}
}

func (s *HTTPStorage) Get(name string) (string, bool) {
	return s.values.Get(name)
}

func (s *HTTPStorage) Set(name, value string, attrs Attributes) {
	http.SetCookie(s.w, newHTTPCookie(name, value, attrs))
	s.values.Set(name, value, attrs)
}

func (s *HTTPStorage) Delete(name string, attrs Attributes) {
	c := newHTTPCookie(name, "", attrs)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(s.w, c)
	s.values.Delete(name, attrs)
}

func (s *HTTPStorage) All() map[string]string {
	return s.values.All()
}

func newHTTPCookie(name, value string, attrs Attributes) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     attrs.Path,
		Domain:   attrs.Domain,
		MaxAge:   attrs.MaxAge,
		Secure:   attrs.Secure,
		HttpOnly: attrs.HTTPOnly,
		SameSite: attrs.SameSite,
	}
	if attrs.MaxAge > 0 {
		c.Expires = time.Now().Add(time.Duration(attrs.MaxAge) * time.Second)
	}
	return c
}
