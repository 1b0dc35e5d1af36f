// Package storeclient talks to the storefront HTTP API on behalf of a shopper
// or an admin.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Session is the caller's authenticated state.
type Session struct {
	UserID       string    `json:"userId"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	AccessExp    time.Time `json:"accessExp"`
}

func (s Session) LoggedIn() bool { return s.AccessToken != "" }

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	session Session
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) SetSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	want    int
	cookies []*http.Cookie
}

// do sends r and decodes a successful body into out. An expired session is
// refreshed once when a refresh token is held.
func (c *Client) do(ctx context.Context, r request, out any) (*http.Response, error) {
	var payload []byte
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}

	resp, err := c.send(ctx, r, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && c.Session().RefreshToken != "" && !strings.HasPrefix(r.path, "/auth/") {
		resp.Body.Close()
		if _, rErr := c.Refresh(ctx); rErr != nil {
			return nil, rErr
		}
		if resp, err = c.send(ctx, r, payload); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	want := r.want
	if want == 0 {
		want = http.StatusOK
	}
	if resp.StatusCode != want {
		return resp, decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, r request, payload []byte) (*http.Response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range r.cookies {
		req.AddCookie(ck)
	}
	if tok := c.Session().AccessToken; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	var body contracts.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}

func (c *Client) Register(ctx context.Context, in contracts.RegisterRequest) (*contracts.User, error) {
	var out contracts.RegisterResponse
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/user-register", body: in, want: http.StatusCreated}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login authenticates and keeps the returned tokens for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var out contracts.LoginResponse
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   contracts.LoginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return Session{}, err
	}
	s := Session{
		UserID:      out.UserID,
		Role:        out.Role,
		AccessToken: out.AccessToken,
		AccessExp:   time.Unix(out.AccessExp, 0),
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == tokens.RefreshCookie {
			s.RefreshToken = ck.Value
		}
	}
	c.SetSession(s)
	return s, nil
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessExp    int64  `json:"access_exp"`
	Role         string `json:"role"`
}

// Refresh rotates the held refresh token.
func (c *Client) Refresh(ctx context.Context) (Session, error) {
	s := c.Session()
	if s.RefreshToken == "" {
		return Session{}, &APIError{Status: http.StatusUnauthorized, Message: "refresh token missing"}
	}
	var out refreshResponse
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   map[string]string{"refresh_token": s.RefreshToken},
	}, &out)
	if err != nil {
		c.SetSession(Session{})
		return Session{}, err
	}
	s.AccessToken = out.AccessToken
	s.RefreshToken = out.RefreshToken
	s.AccessExp = time.Unix(out.AccessExp, 0)
	s.Role = out.Role
	c.SetSession(s)
	return s, nil
}

func (c *Client) Logout(ctx context.Context) error {
	s := c.Session()
	defer c.SetSession(Session{})
	if s.RefreshToken == "" {
		return nil
	}
	_, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/logout",
		cookies: []*http.Cookie{{Name: tokens.RefreshCookie, Value: s.RefreshToken}},
	}, nil)
	return err
}

type productPage struct {
	Data []contracts.Product `json:"data"`
}

func (c *Client) Products(ctx context.Context, category string, page, size int) ([]contracts.Product, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out productPage
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/products", query: q}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Product(ctx context.Context, id string) (*contracts.Product, error) {
	var out contracts.Product
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/products/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOrder(ctx context.Context, in contracts.CreateOrderRequest) (*contracts.Order, error) {
	var out contracts.Order
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/orders", body: in, want: http.StatusCreated}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns userID's orders; empty userID means the caller's own.
func (c *Client) ListOrders(ctx context.Context, userID, period string) ([]contracts.Order, error) {
	q := url.Values{}
	if userID == "" {
		userID = c.Session().UserID
	}
	if userID != "" {
		q.Set("userId", userID)
	}
	if period != "" {
		q.Set("period", period)
	}
	var out contracts.UserOrdersResponse
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: q}, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) AdminOrders(ctx context.Context, period string) (*contracts.AdminOrdersResponse, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	var out contracts.AdminOrdersResponse
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status contracts.OrderStatus) (*contracts.Order, error) {
	var out contracts.OrderEnvelope
	_, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/orders",
		body:   contracts.UpdateOrderStatusRequest{OrderID: orderID, Status: status},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) Feedback(ctx context.Context, productID string) (*contracts.Feedback, error) {
	var out contracts.Feedback
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/feedback/" + url.PathEscape(productID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postFeedback(ctx context.Context, productID string, in contracts.FeedbackRequest) (*contracts.Feedback, error) {
	var out contracts.Feedback
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/feedback/" + url.PathEscape(productID), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Vote(ctx context.Context, productID string, vote contracts.VoteValue) (*contracts.Feedback, error) {
	return c.postFeedback(ctx, productID, contracts.FeedbackRequest{Type: contracts.FeedbackTypeVote, Vote: vote})
}

func (c *Client) Comment(ctx context.Context, productID, text string) (*contracts.Feedback, error) {
	return c.postFeedback(ctx, productID, contracts.FeedbackRequest{Type: contracts.FeedbackTypeComment, Text: text})
}
