package domain

import "strings"

// AuthScheme is an authentication scheme negotiated with a host.
type AuthScheme struct {
	Name     string
	Username string
	Password string
}

// AuthCache remembers which scheme each host accepted so later requests can
// authenticate without waiting for a challenge.
type AuthCache struct {
	schemes map[string]AuthScheme
}

// NewAuthCache returns an empty cache.
func NewAuthCache() *AuthCache {
	return &AuthCache{schemes: map[string]AuthScheme{}}
}

// Get looks up the scheme cached for host.
func (a *AuthCache) Get(host string) (AuthScheme, bool) {
	if a == nil || a.schemes == nil {
		return AuthScheme{}, false
	}
	s, ok := a.schemes[strings.ToLower(host)]
	return s, ok
}

// Put caches scheme for host.
func (a *AuthCache) Put(host string, scheme AuthScheme) {
	if a.schemes == nil {
		a.schemes = map[string]AuthScheme{}
	}
	a.schemes[strings.ToLower(host)] = scheme
}

// Remove forgets host.
func (a *AuthCache) Remove(host string) {
	if a == nil || a.schemes == nil {
		return
	}
	delete(a.schemes, strings.ToLower(host))
}

// Session carries authentication state across sequential fetches of one fetcher.
// It is not safe for concurrent fetches.
type Session struct {
	AuthCache *AuthCache
	// UserToken is whatever the transport negotiated last; opaque to the fetcher.
	UserToken any
}

// NewSession returns a session with an empty auth cache and no token.
func NewSession() *Session {
	return &Session{AuthCache: NewAuthCache()}
}
