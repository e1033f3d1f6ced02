package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to the MotriLog auth service on behalf of one user.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// SessionToken, when set, is sent as a Bearer header on every request.
	SessionToken string
}

// NewClient creates a client with its own cookie jar.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Cookie returns the value of the named cookie the server set, if any.
func (c *Client) Cookie(name string) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// Login posts the credentials. A 202 is not an error: check Pending2FA on
// the result and follow up with Verify2FA.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify2FA completes a pending login with the code from Telegram.
func (c *Client) Verify2FA(ctx context.Context, code string) (*LoginResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/verify-2fa", VerifyRequest{Code: code})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.message(ctx, http.MethodPost, "/logout", nil)
}

// Profile returns the logged-in user.
func (c *Client) Profile(ctx context.Context) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckAuth(ctx context.Context) (*CheckAuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/check-auth", nil)
	if err != nil {
		return nil, err
	}

	var out CheckAuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LinkTelegram links a chat id; later logins require a code sent there.
func (c *Client) LinkTelegram(ctx context.Context, chatID string) error {
	return c.message(ctx, http.MethodPost, "/telegram/link", LinkTelegramRequest{ChatID: ChatID(chatID)})
}

func (c *Client) UnlinkTelegram(ctx context.Context) error {
	return c.message(ctx, http.MethodPost, "/telegram/unlink", nil)
}

func (c *Client) SendTestAlert(ctx context.Context) error {
	return c.message(ctx, http.MethodPost, "/telegram/test-alert", nil)
}

// ListUsers requires an admin session.
func (c *Client) ListUsers(ctx context.Context) ([]AdminUserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/admin/users", nil)
	if err != nil {
		return nil, err
	}

	var out []AdminUserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleBan flips a user's active flag. Requires an admin session.
func (c *Client) ToggleBan(ctx context.Context, userID string) (*BanResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/admin/users/"+url.PathEscape(userID)+"/ban", nil)
	if err != nil {
		return nil, err
	}

	var out BanResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) message(ctx context.Context, method, path string, body any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}
