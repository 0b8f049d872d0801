// Package client implements the authenticated HTTP client for the Advisio
// platform API. It owns request building and body encoding, normalizes the
// JSON response envelope, and centrally intercepts the two sentinel server
// states: session expiry ("logout") and guest-mode restriction ("guest").
//
// Two entry points exist with different trust levels: FetchPublic for
// unauthenticated flows (login, registration, recovery, activation) and
// FetchWithAuth for everything else. The platform API is POST-only.
package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/advisio/advisio/internal/common/apperrors"
	"github.com/advisio/advisio/internal/common/logtrace"
	"github.com/advisio/advisio/internal/common/uuid"
	"github.com/advisio/advisio/internal/credstore"
	"github.com/advisio/advisio/pkg/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error taxonomy. ErrNetwork wraps transport-level failures (no response
// received) and always propagates to the caller. ErrServer stands in for
// unparseable responses; the underlying parse error is logged, never
// attached, so it cannot leak into user-facing messages.
var (
	ErrNetwork = apperrors.New("unable to reach server")
	ErrServer  = apperrors.New("server error").SetStatusCode(http.StatusBadGateway)
)

const (
	headerOrigin    = "X-Origin"
	headerRequestID = "X-Request-Id"

	// originMarker identifies requests from this client to the platform.
	originMarker = "app"
)

// Client makes requests to the platform API. The auth token is re-read
// from the credential store on every authenticated call rather than
// cached, so a logout or re-login is picked up immediately.
type Client struct {
	baseURL    string
	store      credstore.CredentialStore
	notifier   Notifier
	httpClient *http.Client
	onExpiry   func()
}

// Option configures a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The default carries
// no timeout; the transport's behavior applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNotifier sets the user-notice presenter. Defaults to LogNotifier.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithExpiryHandler sets the session-expiry capability invoked when the
// server answers with the logout sentinel. Passed at startup so the client
// never holds a reference to session state.
func WithExpiryHandler(fn func()) Option {
	return func(c *Client) {
		c.onExpiry = fn
	}
}

// New creates a client for the API at baseURL, reading credentials from
// the given store.
func New(baseURL string, store credstore.CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		store:      store,
		notifier:   LogNotifier{},
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOptions carries per-call options for FetchWithAuth.
type RequestOptions struct {
	Silent  bool
	Headers map[string]string
}

// RequestOption configures a single authenticated call.
type RequestOption func(*RequestOptions)

// Silent suppresses user notices for this call. Background refreshes use
// it so a focus-triggered reload never interrupts the user; the call's
// return values are unaffected.
func Silent() RequestOption {
	return func(o *RequestOptions) {
		o.Silent = true
	}
}

// WithHeader adds a header to this call.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// FetchPublic posts to an unauthenticated endpoint. No credential is
// attached and no sentinel status is intercepted: the parsed envelope is
// returned as-is. Transport failures return ErrNetwork; unparseable
// responses return ErrServer.
func (c *Client) FetchPublic(ctx context.Context, endpoint string, fields url.Values) (*api.Envelope, error) {
	var body RequestBody
	if fields != nil {
		body = Form(fields)
	}

	req, err := c.newRequest(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("public request failed")
		return nil, ErrNetwork.Err(err)
	}
	defer resp.Body.Close()

	return c.parseEnvelope(resp.Body, endpoint)
}

// FetchWithAuth posts to an authenticated endpoint and classifies the
// response envelope:
//
//   - logout sentinel: the expiry handler runs once and the call returns
//     (nil, nil). A nil envelope with a nil error means the session is
//     ending; the caller has no data to act on.
//   - guest sentinel: a blocking notice is raised and the envelope is
//     returned with Message normalized, nil error.
//   - any other non-ok status: a notice is raised unless Silent; the
//     envelope is always returned with a nil error so callers can branch
//     on status and message fields themselves.
//   - transport failure: a connectivity notice is raised unless Silent,
//     and ErrNetwork is always returned.
//
// The token is read from the credential store per call; if absent the
// request is still sent and the server rejects it.
func (c *Client) FetchWithAuth(ctx context.Context, endpoint string, body RequestBody, opts ...RequestOption) (*api.Envelope, error) {
	var ropts RequestOptions
	for _, opt := range opts {
		opt(&ropts)
	}

	requestID := uuid.NewString()
	ctx = logtrace.WithRequestID(ctx, requestID)

	req, err := c.newRequest(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerRequestID, requestID)
	if token, ok := c.store.Get(credstore.KeyAuthToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range ropts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Str("request_id", requestID).Msg("request failed")
		if !ropts.Silent {
			c.notifier.Notify(NoticeConnectivity, ConnectivityMessage)
		}
		return nil, ErrNetwork.Err(err)
	}
	defer resp.Body.Close()

	env, err := c.parseEnvelope(resp.Body, endpoint)
	if err != nil {
		return nil, err
	}

	switch env.Status {
	case api.StatusLogout:
		log.Info().Str("endpoint", endpoint).Msg("server ended session")
		if c.onExpiry != nil {
			c.onExpiry()
		}
		return nil, nil

	case api.StatusGuest:
		env.Message = env.ErrorMessage()
		c.notifier.Notify(NoticeGuest, env.Message)
		return env, nil

	case api.StatusOK:
		return env, nil

	default:
		if !ropts.Silent {
			c.notifier.Notify(NoticeError, env.ErrorMessage())
		}
		return env, nil
	}
}

// newRequest builds the POST request for an endpoint, encoding the body
// variant. A nil body sends an empty request with no content type.
func (c *Client) newRequest(ctx context.Context, endpoint string, body RequestBody) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, ErrServer.MsgErr("invalid server URL", err)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Path = path.Join(u.Path, endpoint)

	var reader io.Reader
	var contentType string
	if body != nil {
		reader, contentType, err = body.encode()
		if err != nil {
			return nil, ErrServer.MsgErr("unable to encode request body", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), reader)
	if err != nil {
		return nil, ErrServer.MsgErr("unable to create request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(headerOrigin, originMarker)
	return req, nil
}

// parseEnvelope reads and decodes the response body. Decode failures are
// logged and collapsed into the generic ErrServer.
func (c *Client) parseEnvelope(r io.Reader, endpoint string) (*api.Envelope, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("unable to read response body")
		return nil, ErrServer
	}

	var env api.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Error().Err(err).Str("endpoint", endpoint).Msg("unparseable response body")
		return nil, ErrServer
	}
	env.Raw = raw
	return &env, nil
}
