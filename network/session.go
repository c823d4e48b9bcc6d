// Package network provides the cookie-carrying HTTP session shared by every request of one downloader run.
package network

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/blaqmajik/laracasts-downloader/constant"
	"github.com/blaqmajik/laracasts-downloader/key"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Session owns the accumulated cookie state for the lifetime of one engine instance.
// Cookies are attached to every outgoing request and absorbed from every response;
// nothing else mutates the jar. A Session must not be shared across goroutines.
type Session struct {
	jar   http.CookieJar
	pages *http.Client
	media *http.Client
}

// New creates a Session with a fresh cookie jar.
//
// Two clients share the jar: the page client never follows redirects (a redirect
// from a lesson or episode route means "not found", see the site package), while
// the media client follows them freely since provider player pages and CDN links
// redirect legitimately.
func New() *Session {
	jar := lo.Must(cookiejar.New(nil))

	transport := newTransport()

	return &Session{
		jar: jar,
		pages: &http.Client{
			Timeout:   time.Minute,
			Jar:       jar,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		media: &http.Client{
			// No client timeout here: a media transfer legitimately runs for
			// longer than any sane request deadline. The transport's own
			// timeouts still bound a stalled connection.
			Jar:       jar,
			Transport: transport,
		},
	}
}

// newTransport initializes a tuned http.Transport with certificate verification disabled,
// matching the site's historical certificate setup. When the TLS fingerprint option is
// enabled, the returned round tripper instead dials with a browser Client Hello.
func newTransport() http.RoundTripper {
	if viper.GetBool(key.NetworkFingerprint) {
		return newFingerprintTransport()
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return t
}

// NewRequest builds a request carrying the default User-Agent.
func (s *Session) NewRequest(method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constant.UserAgent)
	return req, nil
}

// DoPage executes a request without following redirects. The response's cookies
// are absorbed into the session jar as a side effect.
func (s *Session) DoPage(req *http.Request) (*http.Response, error) {
	return s.pages.Do(req)
}

// DoMedia executes a request following redirects, for provider player pages and
// the media transfer itself.
func (s *Session) DoMedia(req *http.Request) (*http.Response, error) {
	return s.media.Do(req)
}
