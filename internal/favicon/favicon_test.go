package favicon

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ico "github.com/sergeymakinen/go-ico"
)

func testFinder(proxy string) *Finder {
	f := NewFinder(2*time.Second, "ice-test", proxy != "")
	if proxy != "" {
		f.proxyBase = proxy
	}
	return f
}

func pageServer(t *testing.T, body string, favicon bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/favicon.ico" {
			if favicon {
				w.Write([]byte("ico"))
				return
			}
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscoverPrefersOpenGraph(t *testing.T) {
	srv := pageServer(t, `<html><head>
<link rel="icon" href="/small.png">
<meta property="og:image" content="https://cdn.example.com/og.png">
</head></html>`, true)

	got, err := testFinder("").Discover(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != "https://cdn.example.com/og.png" {
		t.Errorf("got %q", got)
	}
}

func TestDiscoverLinkPriority(t *testing.T) {
	srv := pageServer(t, `<html><head>
<link rel="icon" href="/icon.png">
<link rel="apple-touch-icon" href="touch.png">
</head></html>`, true)

	got, err := testFinder("").Discover(context.Background(), srv.URL+"/app/")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != srv.URL+"/app/touch.png" {
		t.Errorf("got %q, want relative href resolved against the page", got)
	}
}

func TestDiscoverShortcutIcon(t *testing.T) {
	srv := pageServer(t, `<link rel="Shortcut Icon" href="/s.ico">`, false)

	got, err := testFinder("").Discover(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != srv.URL+"/s.ico" {
		t.Errorf("got %q", got)
	}
}

func TestDiscoverFallsBackToFaviconICO(t *testing.T) {
	srv := pageServer(t, `<html><head><title>bare</title></head></html>`, true)

	got, err := testFinder("").Discover(context.Background(), srv.URL+"/deep/page")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != srv.URL+"/favicon.ico" {
		t.Errorf("got %q", got)
	}
}

func TestDiscoverGoogleProxy(t *testing.T) {
	srv := pageServer(t, `<html></html>`, false)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png"))
	}))
	defer proxy.Close()

	got, err := testFinder(proxy.URL+"/?domain=").Discover(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got != proxy.URL+"/?domain=127.0.0.1" {
		t.Errorf("got %q", got)
	}
}

func TestDiscoverNoIcon(t *testing.T) {
	srv := pageServer(t, `<html></html>`, false)

	_, err := testFinder("").Discover(context.Background(), srv.URL)
	if !errors.Is(err, ErrNoIcon) {
		t.Errorf("err = %v, want ErrNoIcon", err)
	}
}

func TestDiscoverUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := testFinder("").Discover(context.Background(), addr)
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestDownloadUsesPathExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	got, err := testFinder("").Download(context.Background(), srv.URL+"/logo.SVG", dir)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got != filepath.Join(dir, "favicon.svg") {
		t.Errorf("path = %q", got)
	}
	data, _ := os.ReadFile(got)
	if string(data) != "<svg/>" {
		t.Errorf("content = %q", data)
	}
}

func TestDownloadUsesContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.Write([]byte("GIF89a"))
	}))
	defer srv.Close()

	got, err := testFinder("").Download(context.Background(), srv.URL+"/icon", t.TempDir())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !strings.HasSuffix(got, "favicon.gif") {
		t.Errorf("path = %q", got)
	}
}

func TestDownloadDataURL(t *testing.T) {
	got, err := testFinder("").Download(context.Background(), "data:image/png;base64,iVBORw0KGgo=", t.TempDir())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !strings.HasSuffix(got, "favicon.png") {
		t.Errorf("path = %q", got)
	}
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := testFinder("").Download(context.Background(), srv.URL+"/x.png", t.TempDir()); err == nil {
		t.Error("expected error for 404")
	}
}

func sampleICO(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		t.Fatalf("encoding ico: %v", err)
	}
	return buf.Bytes()
}

func TestConvertICOtoPNG(t *testing.T) {
	out, err := ConvertICOtoPNG(sampleICO(t))
	if err != nil {
		t.Fatalf("ConvertICOtoPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestDownloadConvertsICO(t *testing.T) {
	data := sampleICO(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	got, err := testFinder("").Download(context.Background(), srv.URL+"/favicon.ico", t.TempDir())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !strings.HasSuffix(got, "favicon.png") {
		t.Errorf("path = %q, want converted png", got)
	}
}

func TestDownloadKeepsUndecodableICO(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not really an icon"))
	}))
	defer srv.Close()

	got, err := testFinder("").Download(context.Background(), srv.URL+"/favicon.ico", t.TempDir())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !strings.HasSuffix(got, "favicon.ico") {
		t.Errorf("path = %q", got)
	}
}
