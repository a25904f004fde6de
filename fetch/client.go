// Package fetch retrieves raw page markup over plain HTTP with a Chrome TLS
// fingerprint, for source-only audits and metadata extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	tls2 "github.com/refraction-networking/utls"
	xproxy "golang.org/x/net/proxy"

	"github.com/use-agent/pagepulse/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodyBytes caps fetched documents at 10 MB.
const maxBodyBytes = 10 * 1024 * 1024

// Client performs HTTP requests with a Chrome TLS fingerprint (utls).
type Client struct {
	proxy string
}

// NewClient creates a fetch client. proxy may be empty.
func NewClient(proxy string) *Client {
	return &Client{proxy: proxy}
}

// Result is a fetched document.
type Result struct {
	Body     []byte
	FinalURL string
}

// Fetch retrieves the URL and returns the body plus the post-redirect URL.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr, c.proxy)
		},
	}
	if c.proxy != "" {
		proxyURL, err := url.Parse(c.proxy)
		if err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeFetch, "build request failed", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeFetch, fmt.Sprintf("fetch of %s failed", targetURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewUpstreamError(models.ErrCodeFetch,
			fmt.Sprintf("target responded with HTTP %d", resp.StatusCode), resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeFetch, "read body failed", err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{Body: body, FinalURL: finalURL}, nil
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via
// utls, tunnelled through a SOCKS5 proxy when one is configured.
func dialTLSChrome(ctx context.Context, network, addr, proxy string) (net.Conn, error) {
	rawConn, err := dialRaw(ctx, network, addr, proxy)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName:         host,
		InsecureSkipVerify: false,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// dialRaw opens the TCP connection to addr. With a socks5:// proxy the
// connection runs the full SOCKS handshake and CONNECT through the proxy,
// so the subsequent TLS handshake reaches the target, not the proxy socket.
func dialRaw(ctx context.Context, network, addr, proxy string) (net.Conn, error) {
	dialer := &net.Dialer{}

	if proxy != "" {
		proxyURL, parseErr := url.Parse(proxy)
		if parseErr == nil && (proxyURL.Scheme == "socks5" || proxyURL.Scheme == "socks5h") {
			var auth *xproxy.Auth
			if u := proxyURL.User; u != nil {
				password, _ := u.Password()
				auth = &xproxy.Auth{User: u.Username(), Password: password}
			}
			socksDialer, socksErr := xproxy.SOCKS5("tcp", proxyURL.Host, auth, dialer)
			if socksErr != nil {
				return nil, fmt.Errorf("socks5 dialer: %w", socksErr)
			}
			cd, ok := socksDialer.(xproxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("socks5 dialer does not support context dialing")
			}
			conn, connErr := cd.DialContext(ctx, network, addr)
			if connErr != nil {
				return nil, fmt.Errorf("socks5 connect: %w", connErr)
			}
			return conn, nil
		}
	}

	return dialer.DialContext(ctx, network, addr)
}
