package httpstream

import (
	"strings"
	"testing"
)

func TestExtractURLDefaults(t *testing.T) {
	u, err := extractURL("http://example.com/api/widgets")
	if err != nil {
		t.Fatalf("extractURL: %v", err)
	}
	if u.protocol != "http" || u.hostname != "example.com" || u.port != 80 || u.path != "/api/widgets" {
		t.Fatalf("unexpected parse: %+v", u)
	}
}

func TestExtractURLHTTPSDefaultPort(t *testing.T) {
	u, err := extractURL("https://example.com")
	if err != nil {
		t.Fatalf("extractURL: %v", err)
	}
	if u.port != 443 || u.path != "/" {
		t.Fatalf("unexpected parse: %+v", u)
	}
}

func TestExtractURLExplicitPort(t *testing.T) {
	u, err := extractURL("http://example.com:8081/x")
	if err != nil {
		t.Fatalf("extractURL: %v", err)
	}
	if u.port != 8081 {
		t.Fatalf("expected port 8081, got %d", u.port)
	}
}

func TestExtractURLRejectsBadScheme(t *testing.T) {
	if _, err := extractURL("ftp://example.com"); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}

func TestBuildMultipartContainsBoundaryAndFile(t *testing.T) {
	req := buildMultipart("/upload", "example.com", "report.bin", []byte("data"))
	if !strings.Contains(req, `Content-Disposition: form-data; name="file"; filename="report.bin"`) {
		t.Fatalf("missing content-disposition header: %s", req)
	}
	if !strings.Contains(req, "Connection: close") {
		t.Fatalf("missing Connection: close header")
	}
}
