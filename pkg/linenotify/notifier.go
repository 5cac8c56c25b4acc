// Package linenotify is a client for the LINE Notify API.
//
// A Notifier is built once with an access token and configured through
// chained setters. Each setter returns a copy, so a base Notifier can be
// shared and specialised per call without locking:
//
//	base := linenotify.New(token)
//	resp, err := base.SetMessage("deploy finished").Send(ctx)
//
// Send validates the payload, posts one multipart request and returns the
// response as received. Non-2xx statuses are not errors; the caller owns the
// response body.
package linenotify

import (
	"context"
	"net/http"
)

// DefaultEndpoint is the LINE Notify notification endpoint.
const DefaultEndpoint = "https://notify-api.line.me/api/notify"

// Multipart field names used by the API.
const (
	FieldMessage        = "message"
	FieldImageThumbnail = "imageThumbnail"
	FieldImageFullsize  = "imageFullsize"
	FieldImageFile      = "imageFile"
)

// Notifier holds a token and an optional notification payload.
type Notifier struct {
	token      string
	message    string
	imageThumb string
	imageFull  string
	imageFile  string

	endpoint string
	client   *http.Client
}

// Option customises a Notifier at construction time.
type Option func(*Notifier)

// WithHTTPClient sets the client used for requests. The client may be shared
// between Notifiers for connection reuse.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		if c != nil {
			n.client = c
		}
	}
}

// WithEndpoint overrides the API URL.
func WithEndpoint(url string) Option {
	return func(n *Notifier) {
		if url != "" {
			n.endpoint = url
		}
	}
}

// New returns a Notifier for token with no payload set.
func New(token string, opts ...Option) *Notifier {
	n := &Notifier{
		token:    token,
		endpoint: DefaultEndpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetMessage returns a copy of n with the text message set.
func (n *Notifier) SetMessage(text string) *Notifier {
	c := *n
	c.message = text
	return &c
}

// SetImageThumb returns a copy of n with the thumbnail URL set.
// It must be paired with SetImageFull.
func (n *Notifier) SetImageThumb(url string) *Notifier {
	c := *n
	c.imageThumb = url
	return &c
}

// SetImageFull returns a copy of n with the fullsize image URL set.
// It must be paired with SetImageThumb.
func (n *Notifier) SetImageFull(url string) *Notifier {
	c := *n
	c.imageFull = url
	return &c
}

// SetImageFile returns a copy of n that uploads the file at path.
func (n *Notifier) SetImageFile(path string) *Notifier {
	c := *n
	c.imageFile = path
	return &c
}

// Message returns the text message, or "" when unset.
func (n *Notifier) Message() string { return n.message }

// ImageThumb returns the thumbnail URL, or "" when unset.
func (n *Notifier) ImageThumb() string { return n.imageThumb }

// ImageFull returns the full-size image URL, or "" when unset.
func (n *Notifier) ImageFull() string { return n.imageFull }

// ImageFile returns the path of the file to upload, or "" when unset.
func (n *Notifier) ImageFile() string { return n.imageFile }

// Endpoint returns the URL Send posts to.
func (n *Notifier) Endpoint() string { return n.endpoint }

func (n *Notifier) hasImagePair() bool {
	return n.imageThumb != "" && n.imageFull != ""
}

// Validate reports whether n can be sent. A message is optional as long as
// a complete image source (URL pair or file) is configured.
func (n *Notifier) Validate() error {
	if n.token == "" {
		return ErrMissingToken
	}
	if (n.imageThumb == "") != (n.imageFull == "") {
		return ErrInconsistentImagePair
	}
	if n.message == "" && !n.hasImagePair() && n.imageFile == "" {
		return ErrMissingPayload
	}
	return nil
}

// Send posts the notification and returns the API response unchanged,
// whatever its status code. The caller must close the response body.
//
// Errors are one of ErrMissingToken, ErrInconsistentImagePair,
// ErrMissingPayload, *FileReadError or *TransportError.
func (n *Notifier) Send(ctx context.Context) (*http.Response, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	body, contentType, err := n.buildForm()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}
