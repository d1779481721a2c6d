package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/machinebox/graphql"
	"go.uber.org/zap"

	"github.com/Darlington720/library-module/pkg/config"
	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/middleware/requestid"
)

// Observer receives the outcome of every remote operation.
type Observer interface {
	ObserveGraphQL(operation string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveGraphQL(string, time.Duration, error) {}

var errUnauthenticated = errors.New("library service rejected the session token")

// Client talks to the library GraphQL backend on behalf of a signed-in administrator.
type Client struct {
	gql      *graphql.Client
	validate *validator.Validate
	observer Observer
	logger   *zap.Logger
}

// NewClient builds a GraphQL client honouring the configured endpoint and timeout.
func NewClient(cfg config.GraphQLConfig, observer Observer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: statusTransport{base: http.DefaultTransport},
	}
	gql := graphql.NewClient(cfg.Endpoint, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { logger.Debug("graphql_transport", zap.String("detail", s)) }

	return &Client{
		gql:      gql,
		validate: validator.New(),
		observer: observer,
		logger:   logger,
	}
}

func (c *Client) run(ctx context.Context, operation, token string, req *graphql.Request, out interface{}) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	reqID := requestid.FromContext(ctx)
	if reqID != "" {
		req.Header.Set(requestid.Header, reqID)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, out)
	c.observer.ObserveGraphQL(operation, time.Since(start), err)
	if err != nil {
		c.logger.Warn("graphql operation failed",
			zap.String("operation", operation),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return classify(err)
	}
	return nil
}

// check validates a decoded wire payload before it is converted.
func (c *Client) check(operation string, v interface{}) error {
	if err := c.validate.Struct(v); err != nil {
		c.logger.Warn("graphql response failed validation", zap.String("operation", operation), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid response from library service")
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, errUnauthenticated) || isAuthMessage(err.Error()) {
		return appErrors.Wrap(err, appErrors.ErrAuthFailed.Code, appErrors.ErrAuthFailed.Status, appErrors.ErrAuthFailed.Message)
	}
	message := strings.TrimSpace(strings.TrimPrefix(err.Error(), "graphql:"))
	if errors.Is(err, context.DeadlineExceeded) || message == "" {
		message = appErrors.ErrUpstream.Message
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, message)
}

func isAuthMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range []string{"unauthenticated", "not authenticated", "jwt expired", "invalid token"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// statusTransport surfaces HTTP level auth rejections before the body is decoded.
type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	res, err := t.base.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		_ = res.Body.Close()
		return nil, errUnauthenticated
	}
	return res, nil
}
