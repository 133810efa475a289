package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

var log = logger.GetOrCreate("fetcher")

// ArgsHTTPFetcher defines the arguments needed to create a new HTTP fetcher
type ArgsHTTPFetcher struct {
	Timeout           time.Duration
	UserAgent         string
	APIKey            string
	RequestsPerSecond float64
}

type httpFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	apiKey    string
	limiter   *rate.Limiter
}

// NewHTTPFetcher creates a new HTTP fetcher that bounds every request with the provided timeout
func NewHTTPFetcher(args ArgsHTTPFetcher) *httpFetcher {
	timeout := args.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if args.RequestsPerSecond > 0 {
		limit = rate.Limit(args.RequestsPerSecond)
	}

	return &httpFetcher{
		client:    &http.Client{},
		timeout:   timeout,
		userAgent: args.UserAgent,
		apiKey:    args.APIKey,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Fetch retrieves the body of the provided URL
func (f *httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if len(url) == 0 {
		return nil, errEmptyURL
	}

	err := f.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w while waiting for the rate limiter", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	body, status, err := f.doGet(fetchCtx, url)
	elapsed := time.Since(start)
	if err != nil {
		if isTimeout(fetchCtx, err) {
			err = fmt.Errorf("%w after %v for %s", ErrTimeout, f.timeout, url)
		}
		log.Warn("fetch failed", "url", url, "status", status, "length", len(body), "elapsed", elapsed, "error", err)
		return nil, err
	}

	log.Debug("fetched", "url", url, "status", status, "length", len(body), "elapsed", elapsed)

	return body, nil
}

// FetchJSON retrieves the body of the provided URL and checks that it holds valid JSON
func (f *httpFetcher) FetchJSON(ctx context.Context, url string) (gjson.Result, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return gjson.Result{}, err
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrInvalidJSON, url)
	}

	return gjson.ParseBytes(body), nil
}

// doGet returns the body read so far together with the status, also on non-2xx answers
func (f *httpFetcher) doGet(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if len(f.userAgent) > 0 {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if len(f.apiKey) > 0 {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, StatusError(resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (f *httpFetcher) IsInterfaceNil() bool {
	return f == nil
}
