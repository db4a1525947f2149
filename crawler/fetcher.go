package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/storage"
	"golang.org/x/net/proxy"
)

var ErrFetch = errors.New("fetch failed")

// Page is the raw result of a successful GET.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

type FetcherOptions struct {
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
	// Storage replaces colly's in-memory cookie/request store when set.
	Storage storage.Storage
}

// CollyFetcher performs single GET requests through a colly collector.
// Revisits are allowed: the crawler keeps its own visited set.
type CollyFetcher struct {
	collector *colly.Collector
}

func NewCollyFetcher(opts FetcherOptions) (*CollyFetcher, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	if opts.UserAgent != "" {
		c.UserAgent = opts.UserAgent
	}
	if opts.Transport != nil {
		c.WithTransport(opts.Transport)
	}
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	if opts.Storage != nil {
		if err := c.SetStorage(opts.Storage); err != nil {
			return nil, fmt.Errorf("set collector storage: %w", err)
		}
	}
	return &CollyFetcher{collector: c}, nil
}

// Fetch returns the page body, or an error wrapping ErrFetch for transport
// failures and non-2xx responses. There is no retry.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.collector.Clone()
	var page *Page
	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        rawURL,
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, rawURL, err)
	}
	if page == nil {
		return nil, fmt.Errorf("%w: %s: no response", ErrFetch, rawURL)
	}
	return page, nil
}

// NewTransport builds the HTTP transport used for crawling. proxyURL may be
// empty, an http(s) proxy or a socks5 proxy.
func NewTransport(proxyURL string) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: 120 * time.Second,
	}
	if proxyURL == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create socks5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return transport, nil
}
