package notifiers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fullex26/linenotify/internal/config"
	"github.com/Fullex26/linenotify/pkg/linenotify"
	"github.com/Fullex26/linenotify/pkg/models"
)

func newTestLine(srv *httptest.Server) *Line {
	return &Line{base: linenotify.New("test-token",
		linenotify.WithEndpoint(srv.URL),
		linenotify.WithHTTPClient(srv.Client()),
	)}
}

func TestLine_Name(t *testing.T) {
	l := &Line{}
	if got := l.Name(); got != "line" {
		t.Errorf("Name() = %q, want %q", got, "line")
	}
}

func TestNewLine_UsesConfig(t *testing.T) {
	l := NewLine(config.LineConfig{Token: "tok", Endpoint: "https://example.com/notify", Timeout: "3s"})
	if l.base.Endpoint() != "https://example.com/notify" {
		t.Errorf("endpoint = %q", l.base.Endpoint())
	}
}

func TestNewLine_DefaultEndpoint(t *testing.T) {
	l := NewLine(config.LineConfig{Token: "tok"})
	if l.base.Endpoint() != linenotify.DefaultEndpoint {
		t.Errorf("endpoint = %q, want %q", l.base.Endpoint(), linenotify.DefaultEndpoint)
	}
}

func TestLine_Send_Success(t *testing.T) {
	var capturedAuth, capturedMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		r.ParseMultipartForm(1 << 20)
		capturedMessage = r.FormValue("message")
		w.Header().Set("X-RateLimit-Remaining", "998")
		w.Header().Set("X-RateLimit-ImageRemaining", "49")
		io.WriteString(w, `{"status":200,"message":"ok"}`)
	}))
	defer srv.Close()

	d, err := newTestLine(srv).Send(context.Background(), models.Payload{Message: "port opened"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if capturedAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", capturedAuth)
	}
	if capturedMessage != "port opened" {
		t.Errorf("message = %q, want %q", capturedMessage, "port opened")
	}
	if d.Outcome != models.OutcomeDelivered || d.StatusCode != 200 {
		t.Errorf("delivery = %v/%d, want delivered/200", d.Outcome, d.StatusCode)
	}
	if d.Notifier != "line" {
		t.Errorf("Notifier = %q", d.Notifier)
	}
	if d.Response != `{"status":200,"message":"ok"}` {
		t.Errorf("Response = %q", d.Response)
	}
	if d.RateRemaining != 998 || d.ImageRemaining != 49 {
		t.Errorf("rate = %d/%d, want 998/49", d.RateRemaining, d.ImageRemaining)
	}
	if d.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestLine_Send_RejectedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"status":401,"message":"Invalid access token"}`)
	}))
	defer srv.Close()

	d, err := newTestLine(srv).Send(context.Background(), models.Payload{Message: "hi"})
	if err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if d.Outcome != models.OutcomeRejected || d.StatusCode != 401 {
		t.Errorf("delivery = %v/%d, want rejected/401", d.Outcome, d.StatusCode)
	}
	if !strings.Contains(d.Response, "Invalid access token") {
		t.Errorf("Response = %q", d.Response)
	}
	if d.RateRemaining != -1 {
		t.Errorf("RateRemaining = %d, want -1 without headers", d.RateRemaining)
	}
}

func TestLine_Send_ValidationFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d, err := newTestLine(srv).Send(context.Background(), models.Payload{ImageThumb: "https://example.com/t.jpg"})
	if !errors.Is(err, linenotify.ErrInconsistentImagePair) {
		t.Fatalf("Send() error = %v, want ErrInconsistentImagePair", err)
	}
	if d.Outcome != models.OutcomeFailed || d.Error == "" {
		t.Errorf("delivery = %+v, want failed with error text", d)
	}
	if called {
		t.Error("no request should be made")
	}
}

func TestLine_Send_ImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cam.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0600); err != nil {
		t.Fatal(err)
	}

	var filename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			if fh := r.MultipartForm.File["imageFile"]; len(fh) == 1 {
				filename = fh[0].Filename
			}
		}
	}))
	defer srv.Close()

	d, err := newTestLine(srv).Send(context.Background(), models.Payload{ImageFile: path})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if d.Outcome != models.OutcomeDelivered {
		t.Errorf("Outcome = %v", d.Outcome)
	}
	if filename != "cam.jpg" {
		t.Errorf("filename = %q, want %q", filename, "cam.jpg")
	}
	if d.Payload.ImageFile != path {
		t.Errorf("payload not recorded: %+v", d.Payload)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// brokenBody yields a prefix and then fails, like a connection reset mid-body.
type brokenBody struct{ sent bool }

func (b *brokenBody) Read(p []byte) (int, error) {
	if b.sent {
		return 0, errors.New("connection reset")
	}
	b.sent = true
	return copy(p, `{"status":2`), nil
}

func (b *brokenBody) Close() error { return nil }

func TestLine_Send_BodyReadFailureRecorded(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       &brokenBody{},
			Request:    r,
		}, nil
	})}
	l := &Line{base: linenotify.New("test-token",
		linenotify.WithEndpoint("http://line.invalid/notify"),
		linenotify.WithHTTPClient(client),
	)}

	d, err := l.Send(context.Background(), models.Payload{Message: "hi"})
	if err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if d.Outcome != models.OutcomeDelivered || d.StatusCode != 200 {
		t.Errorf("delivery = %v/%d, want delivered/200", d.Outcome, d.StatusCode)
	}
	if !strings.Contains(d.Error, "connection reset") {
		t.Errorf("Error = %q, want the read failure", d.Error)
	}
	if d.Response != `{"status":2` {
		t.Errorf("Response = %q, want the partial body", d.Response)
	}
}

func TestLine_Send_LargeResponseTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, strings.Repeat("x", maxResponseBody*2))
	}))
	defer srv.Close()

	d, err := newTestLine(srv).Send(context.Background(), models.Payload{Message: "hi"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if len(d.Response) != maxResponseBody {
		t.Errorf("len(Response) = %d, want %d", len(d.Response), maxResponseBody)
	}
}

func TestLine_Send_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	l := newTestLine(srv)
	srv.Close()

	d, err := l.Send(context.Background(), models.Payload{Message: "hi"})
	var te *linenotify.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Send() error = %v, want *TransportError", err)
	}
	if d.Outcome != models.OutcomeFailed || d.StatusCode != 0 {
		t.Errorf("delivery = %v/%d, want failed/0", d.Outcome, d.StatusCode)
	}
}

func TestLine_Test(t *testing.T) {
	var capturedMessage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		capturedMessage = r.FormValue("message")
	}))
	defer srv.Close()

	if _, err := newTestLine(srv).Test(context.Background()); err != nil {
		t.Errorf("Test() error: %v", err)
	}
	if !strings.Contains(capturedMessage, "linenotify") {
		t.Errorf("test message should mention linenotify: %q", capturedMessage)
	}
}
