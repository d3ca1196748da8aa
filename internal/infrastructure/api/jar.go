package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"
)

// FileJar is a cookie jar that mirrors its cookies to a JSON file, so a CLI
// process can reuse the HTTP-only session cookie minted by a previous login.
// The cookie value is still opaque to everything above the transport.
type FileJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	path string
	base *url.URL
}

var _ http.CookieJar = (*FileJar)(nil)

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// NewFileJar creates a FileJar persisted at path, preloading any cookies
// saved for baseURL by an earlier process.
func NewFileJar(path, baseURL string) (*FileJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	j := &FileJar{jar: jar, path: path, base: base}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return j, nil
		}
		return nil, fmt.Errorf("read cookie file: %w", err)
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt cookie file just means logging in again.
		return j, nil
	}
	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		if !sc.Expires.IsZero() && sc.Expires.Before(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:    sc.Name,
			Value:   sc.Value,
			Path:    sc.Path,
			Expires: sc.Expires,
		})
	}
	jar.SetCookies(base, cookies)
	return j, nil
}

// SetCookies stores the cookies and flushes the jar state to disk.
func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	j.flushLocked()
}

// Cookies returns the cookies to send in a request to u.
func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *FileJar) flushLocked() {
	live := j.jar.Cookies(j.base)
	stored := make([]storedCookie, 0, len(live))
	for _, c := range live {
		stored = append(stored, storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Expires: c.Expires,
		})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return
	}
	// Best effort: a failed flush only costs a re-login.
	_ = os.WriteFile(j.path, data, 0o600)
}
