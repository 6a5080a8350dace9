package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestSignedURLSuccess(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	client := &Client{
		defaultBucket: "bucket",
		serviceAccount: &serviceAccountInfo{
			clientEmail: "signer@example.com",
			privateKey:  key,
		},
	}

	object := "product-images/0b7c/front.png"
	contentType := "image/png"
	urlStr, err := client.SignedURL("", object, contentType, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL returned error: %v", err)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if !strings.EqualFold(parsed.Host, "storage.googleapis.com") {
		t.Fatalf("unexpected host %s", parsed.Host)
	}
	if parsed.Path != "/bucket/"+object {
		t.Fatalf("unexpected path %s", parsed.Path)
	}

	values := parsed.Query()
	if got := values.Get("GoogleAccessId"); got != "signer@example.com" {
		t.Fatalf("unexpected GoogleAccessId %q", got)
	}
	expires := values.Get("Expires")
	if expires == "" {
		t.Fatal("Expires missing")
	}

	rawSig, err := base64.StdEncoding.DecodeString(values.Get("Signature"))
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	data := []byte("PUT\n\n" + contentType + "\n" + expires + "\n/bucket/" + object)
	hash := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify signature: %v", err)
	}
}

func TestSignedReadURLSuccess(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	client := &Client{
		defaultBucket: "bucket",
		serviceAccount: &serviceAccountInfo{
			clientEmail: "signer@example.com",
			privateKey:  key,
		},
	}

	object := "product-images/0b7c/back.jpg"
	urlStr, err := client.SignedReadURL("bucket", object, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignedReadURL returned error: %v", err)
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed read url: %v", err)
	}
	values := parsed.Query()
	rawSig, err := base64.StdEncoding.DecodeString(values.Get("Signature"))
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	data := []byte("GET\n\n\n" + values.Get("Expires") + "\n/bucket/" + object)
	hash := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify read signature: %v", err)
	}
}

func TestSignedURLErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		defaultBucket string
		bucket        string
		object        string
		contentType   string
		expires       time.Duration
	}{
		{"missing bucket", "", "", "object", "image/png", time.Minute},
		{"missing object", "bucket", "bucket", "", "image/png", time.Minute},
		{"missing contentType", "bucket", "bucket", "object", "", time.Minute},
		{"negative ttl", "bucket", "bucket", "object", "image/png", -time.Minute},
		{"ttl too long", "bucket", "bucket", "object", "image/png", 8 * 24 * time.Hour},
	}

	key := mustGenerateKey(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &Client{
				defaultBucket:  tc.defaultBucket,
				serviceAccount: &serviceAccountInfo{clientEmail: "test@example.com", privateKey: key},
			}
			if _, err := client.SignedURL(tc.bucket, tc.object, tc.contentType, tc.expires); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}

	emptyClient := &Client{}
	if _, err := emptyClient.SignedURL("bucket", "object", "image/png", time.Minute); err == nil {
		t.Fatal("expected error without service account")
	}
}

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokens() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func TestDeleteObjectSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "bucket",
		tokenSource:   staticTokens(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodDelete {
				t.Errorf("expected DELETE, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Errorf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if !strings.HasSuffix(req.URL.EscapedPath(), "/o/product-images%2Fabc%2Ffront.png") {
				t.Errorf("unexpected path %s", req.URL.EscapedPath())
			}
			return respond(http.StatusNoContent, "")
		})},
	}

	if err := client.DeleteObject(context.Background(), "", "product-images/abc/front.png"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
}

func TestDeleteObjectNotFound(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "bucket",
		tokenSource:   staticTokens(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return respond(http.StatusNotFound, "")
		})},
	}

	if err := client.DeleteObject(context.Background(), "bucket", "media/file.png"); err != nil {
		t.Fatalf("DeleteObject not found should succeed: %v", err)
	}
}

func TestDeleteObjectServerErrorIsTemporary(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "bucket",
		tokenSource:   staticTokens(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return respond(http.StatusServiceUnavailable, "backend unavailable")
		})},
	}

	err := client.DeleteObject(context.Background(), "bucket", "media/file.png")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !statusErr.Temporary() || statusErr.Body != "backend unavailable" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestPingReportsFailure(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "bucket",
		tokenSource:   staticTokens(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.URL.Query().Get("maxResults") != "1" {
				t.Errorf("expected maxResults=1, got %s", req.URL.RawQuery)
			}
			return respond(http.StatusForbidden, "denied")
		})},
	}

	if err := client.Ping(context.Background()); err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected ping failure with body, got %v", err)
	}
}

func TestPublicURLEscapesSegments(t *testing.T) {
	client := &Client{defaultBucket: "bucket", publicBaseURL: "https://cdn.example.com"}
	got := client.PublicURL("product-images/abc/my front.png")
	if got != "https://cdn.example.com/bucket/product-images/abc/my%20front.png" {
		t.Fatalf("unexpected url %s", got)
	}
}

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}
