// Package httpstream provides the ad-hoc HTTP helpers spec.md §1/§6 places
// outside the reactor-core's own scope (as an external collaborator) but
// still specifies the contract for: POST/GET/multipart-POST with
// "Connection: close", reading the response body via Stream.StreamIn, and
// no chunked-transfer parsing. Grounded directly on
// original_source/lib/hope-io/request/request.h.
package httpstream

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/netloop/netloop/stream"
)

// ErrInvalidURL indicates the endpoint could not be parsed into protocol,
// host, port, and path.
var ErrInvalidURL = errors.New("httpstream: invalid url")

// parsedURL mirrors hope-io's url_t: protocol, hostname, path, port.
type parsedURL struct {
	protocol string
	hostname string
	path     string
	port     int
}

func extractURL(raw string) (parsedURL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return parsedURL{}, errors.Wrap(ErrInvalidURL, raw)
	}
	proto := strings.ToLower(u.Scheme)
	if proto != "http" && proto != "https" {
		return parsedURL{}, errors.Wrap(ErrInvalidURL, "unsupported scheme "+u.Scheme)
	}
	host := u.Hostname()
	port := 80
	if proto == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return parsedURL{protocol: proto, hostname: host, path: path, port: port}, nil
}

func dial(p parsedURL) (stream.Stream, error) {
	if p.protocol == "https" {
		s := stream.NewTLSStream(nil)
		if err := s.Connect(p.hostname, p.port); err != nil {
			return nil, err
		}
		return s, nil
	}
	s := stream.NewTCPStream()
	if err := s.Connect(p.hostname, p.port); err != nil {
		return nil, err
	}
	return s, nil
}

// Post issues a POST with the given JSON payload and optional extra header
// lines, reads the full response via StreamIn, and closes the connection
// (the request always sends "Connection: close").
func Post(endpoint, payload, extraHeaders string) (string, error) {
	u, err := extractURL(endpoint)
	if err != nil {
		return "", err
	}
	s, err := dial(u)
	if err != nil {
		return "", err
	}
	defer s.Disconnect()

	header := fmt.Sprintf("POST %s HTTP/1.1\r\n"+
		"Host: %s\r\n"+
		"Content-Type: application/json;charset=UTF-8\r\n"+
		"Content-Length: %d\r\n"+
		"Connection: close\r\n", u.path, u.hostname, len(payload))
	if extraHeaders != "" {
		header += extraHeaders
	}
	header += "\r\n"

	if err := s.Write([]byte(header)); err != nil {
		return "", err
	}
	if err := s.Write([]byte(payload)); err != nil {
		return "", err
	}
	body, err := s.StreamIn()
	return string(body), err
}

// Get issues a GET with URL-encoded params and optional extra header lines.
func Get(endpoint string, params map[string]string, extraHeaders string) (string, error) {
	u, err := extractURL(endpoint)
	if err != nil {
		return "", err
	}
	s, err := dial(u)
	if err != nil {
		return "", err
	}
	defer s.Disconnect()

	var body strings.Builder
	first := true
	for k, v := range params {
		if !first {
			body.WriteByte('&')
		}
		first = false
		body.WriteString(url.QueryEscape(k))
		body.WriteByte('=')
		body.WriteString(url.QueryEscape(v))
	}

	path := u.path
	if body.Len() > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + body.String()
	}

	request := "GET " + path + " HTTP/1.1\r\n" +
		"Host: " + u.hostname + "\r\n" +
		extraHeaders +
		"Connection: close\r\n\r\n"

	if err := s.Write([]byte(request)); err != nil {
		return "", err
	}
	resp, err := s.StreamIn()
	return string(resp), err
}

// buildMultipart mirrors hope-io's build_http_request: a single-file
// multipart/form-data POST body with a fixed boundary.
func buildMultipart(path, host, filename string, data []byte) string {
	const boundary = "----netloopBoundary7d7b3d"
	var body strings.Builder
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString(`Content-Disposition: form-data; name="file"; filename="` + filename + `"` + "\r\n")
	body.WriteString("Content-Type: application/octet-stream\r\n\r\n")
	body.Write(data)
	body.WriteString("\r\n--" + boundary + "--\r\n")

	var req strings.Builder
	req.WriteString("POST " + path + " HTTP/1.1\r\n")
	req.WriteString("Host: " + host + "\r\n")
	req.WriteString("Content-Type: multipart/form-data; boundary=" + boundary + "\r\n")
	fmt.Fprintf(&req, "Content-Length: %d\r\n", body.Len())
	req.WriteString("Connection: close\r\n\r\n")
	req.WriteString(body.String())
	return req.String()
}

// UploadFile issues a multipart/form-data POST carrying a single file and
// returns the raw response.
func UploadFile(endpoint string, data []byte, filename string) (string, error) {
	u, err := extractURL(endpoint)
	if err != nil {
		return "", err
	}
	s, err := dial(u)
	if err != nil {
		return "", err
	}
	defer s.Disconnect()

	req := buildMultipart(u.path, u.hostname, filename, data)
	if err := s.Write([]byte(req)); err != nil {
		return "", err
	}
	resp, err := s.StreamIn()
	return string(resp), err
}
