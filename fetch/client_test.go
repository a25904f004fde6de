package fetch

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/pagepulse/models"
)

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>landed</body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	res, err := NewClient("").Fetch(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasSuffix(res.FinalURL, "/new") {
		t.Errorf("final URL = %q, want .../new", res.FinalURL)
	}
	if !strings.Contains(string(res.Body), "landed") {
		t.Errorf("body missing redirected content: %q", res.Body)
	}
}

func TestFetch_UpstreamStatusPreserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient("").Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for HTTP 403")
	}

	var auditErr *models.AuditError
	if !errors.As(err, &auditErr) {
		t.Fatalf("error is not an AuditError: %v", err)
	}
	if auditErr.UpstreamStatus != http.StatusForbidden {
		t.Errorf("upstream status = %d, want 403", auditErr.UpstreamStatus)
	}
}

func TestDialTLSChrome_SocksConnectReachesTarget(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	targetCh := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		// Method negotiation: VER NMETHODS METHODS..., answer "no auth".
		head := make([]byte, 2)
		if _, err := io.ReadFull(conn, head); err != nil || head[0] != 0x05 {
			targetCh <- fmt.Sprintf("bad greeting %v (%v)", head, err)
			return
		}
		methods := make([]byte, int(head[1]))
		io.ReadFull(conn, methods)
		conn.Write([]byte{0x05, 0x00})

		// CONNECT request: VER CMD RSV ATYP DST.ADDR DST.PORT.
		req := make([]byte, 4)
		if _, err := io.ReadFull(conn, req); err != nil || req[1] != 0x01 {
			targetCh <- fmt.Sprintf("bad request %v (%v)", req, err)
			return
		}
		var host string
		switch req[3] {
		case 0x01:
			ip := make([]byte, 4)
			io.ReadFull(conn, ip)
			host = net.IP(ip).String()
		case 0x03:
			length := make([]byte, 1)
			io.ReadFull(conn, length)
			name := make([]byte, int(length[0]))
			io.ReadFull(conn, name)
			host = string(name)
		}
		port := make([]byte, 2)
		io.ReadFull(conn, port)
		targetCh <- fmt.Sprintf("%s:%d", host, binary.BigEndian.Uint16(port))

		conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// The fake proxy closes right after its reply, so the TLS handshake must
	// fail; what is under test is that the tunnel to the target is requested.
	if _, err := dialTLSChrome(ctx, "tcp", "example.com:443", "socks5://"+ln.Addr().String()); err == nil {
		t.Fatal("expected TLS handshake failure against the fake proxy")
	}

	select {
	case got := <-targetCh:
		if got != "example.com:443" {
			t.Errorf("proxy CONNECT target = %q, want example.com:443", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("proxy never received a SOCKS CONNECT request")
	}
}

func TestVisibleText_SkipsScriptsAndStyles(t *testing.T) {
	body := []byte(`<html><head><style>.x{}</style></head>
	<body><p>hello</p><script>var x = "hidden";</script><div>world</div></body></html>`)

	text := VisibleText(body)
	if !strings.Contains(text, "hello") || !strings.Contains(text, "world") {
		t.Errorf("visible text missing content: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("script content leaked into visible text: %q", text)
	}
}
