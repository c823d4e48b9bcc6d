package site

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/blaqmajik/laracasts-downloader/log"
	"github.com/blaqmajik/laracasts-downloader/scrape"
)

// ErrSubscriptionNotActive reports an account whose subscription has lapsed,
// detected either at login or mid-transfer. It is never retried.
var ErrSubscriptionNotActive = errors.New("subscription is not active")

// AuthResult classifies the outcome of a login handshake.
type AuthResult int

const (
	Authenticated AuthResult = iota
	InvalidCredentials
	SubscriptionInactive
)

func (r AuthResult) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case InvalidCredentials:
		return "invalid credentials"
	case SubscriptionInactive:
		return "subscription inactive"
	default:
		return "unknown"
	}
}

// Login page routes.
const (
	loginPath    = "/login"
	sessionsPath = "/sessions"
)

// Response body signals used to classify the login result. The site has no
// structured login API, so classification is ordered substring sniffing; the
// precedence below is load-bearing because several signals can co-occur.
const (
	signalReactivate    = "Reactivate"
	signalInvalidEmail  = "must be a valid email address"
	signalPasswordField = `type="password"`
	signalVerify        = "verify your credentials"
)

// Login drives the login handshake: fetch the login form, extract the
// anti-forgery token, POST the credentials on the same cookie session, and
// classify the rendered response.
//
// A lapsed subscription returns (SubscriptionInactive, ErrSubscriptionNotActive)
// so callers that don't inspect the result still abort.
func (c *Client) Login(email, password string) (AuthResult, error) {
	page, err := c.Fetch(loginPath)
	if err != nil {
		return InvalidCredentials, fmt.Errorf("fetch login page: %w", err)
	}

	token, ok := scrape.Token(page.Body).Get()
	if !ok {
		return InvalidCredentials, errors.New("no anti-forgery token on login page")
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("_token", token)
	form.Set("remember", "1")

	req, err := c.session.NewRequest(http.MethodPost, c.baseURL+sessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return InvalidCredentials, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", c.baseURL+loginPath)

	resp, err := c.session.DoMedia(req)
	if err != nil {
		return InvalidCredentials, fmt.Errorf("post login: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return InvalidCredentials, err
	}

	result := classifyLogin(body)
	log.Infof("login classified as %s", result)

	if result == SubscriptionInactive {
		return result, ErrSubscriptionNotActive
	}
	return result, nil
}

// classifyLogin maps a rendered post-login body to an AuthResult.
// Order matters: the reactivation prompt wins over every credential signal.
func classifyLogin(body string) AuthResult {
	switch {
	case strings.Contains(body, signalReactivate):
		return SubscriptionInactive
	case strings.Contains(body, signalInvalidEmail):
		return InvalidCredentials
	case strings.Contains(body, signalPasswordField):
		// A rendered password field means we were bounced back to the form.
		return InvalidCredentials
	case strings.Contains(body, signalVerify):
		return InvalidCredentials
	default:
		return Authenticated
	}
}

func readBody(resp *http.Response) (string, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}
	return string(body), nil
}
