package anubis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/fantaqb/internal/domain/user"
	"github.com/riskibarqy/fantaqb/internal/platform/cache"
	"github.com/riskibarqy/fantaqb/internal/platform/logging"
	"github.com/riskibarqy/fantaqb/internal/platform/resilience"
	"github.com/riskibarqy/fantaqb/internal/usecase"
)

const defaultPrincipalTTL = 30 * time.Second

var errAnubisTransient = errors.New("anubis transient failure")

// Options configures the introspection client.
type Options struct {
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	Circuit        resilience.CircuitBreakerConfig
	// PrincipalTTL bounds how long a verified token is trusted without a
	// new introspection call.
	PrincipalTTL time.Duration
}

// Client verifies bearer tokens against the Anubis introspection endpoint.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	breaker       *resilience.CircuitBreaker
	principals    *cache.Store[user.Principal]
	logger        *logging.Logger
}

func NewClient(httpClient *http.Client, opts Options, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}
	if opts.PrincipalTTL <= 0 {
		opts.PrincipalTTL = defaultPrincipalTTL
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(opts.BaseURL, opts.IntrospectPath),
		adminKey:      strings.TrimSpace(opts.AdminKey),
		breaker:       resilience.NewCircuitBreaker(normalizeCircuitBreakerConfig(opts.Circuit)),
		principals:    cache.NewStore[user.Principal](opts.PrincipalTTL),
		logger:        logger.With("component", "anubis_client"),
	}
}

// VerifyAccessToken resolves token to the caller's principal. Concurrent
// checks of the same token share one introspection call.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	return c.principals.GetOrLoad(ctx, hashToken(token), func(ctx context.Context) (user.Principal, error) {
		var principal user.Principal
		err := c.breaker.Execute(func() error {
			var err error
			principal, err = c.introspect(ctx, token)
			return err
		}, isCircuitFailure)
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen):
			return user.Principal{}, fmt.Errorf("%w: anubis circuit open", usecase.ErrDependencyUnavailable)
		case errors.Is(err, errAnubisTransient):
			return user.Principal{}, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
		case err != nil:
			return user.Principal{}, err
		}
		return principal, nil
	})
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection: %v", errAnubisTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errAnubisTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		// A rejected admin key is a deployment problem, not a bad token.
		c.logger.ErrorContext(ctx, "anubis rejected admin key", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: anubis rejected admin key", usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "anubis introspection failed", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: status %d", errAnubisTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", resp.StatusCode)
		return user.Principal{}, fmt.Errorf("%w: anubis introspection status %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("%w: unmarshal introspect response: %v", usecase.ErrDependencyUnavailable, err)
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("%w: introspect response without user_id", usecase.ErrDependencyUnavailable)
	}

	return user.Principal{UserID: decoded.UserID, Email: decoded.Email}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
