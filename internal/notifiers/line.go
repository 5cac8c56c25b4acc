package notifiers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Fullex26/linenotify/internal/config"
	"github.com/Fullex26/linenotify/pkg/linenotify"
	"github.com/Fullex26/linenotify/pkg/models"
)

// maxResponseBody caps how much of the API answer is kept in a Delivery.
const maxResponseBody = 4 << 10

const testMessage = "🔔 linenotify test notification. If you see this, your token works!"

// Line sends notifications via LINE Notify
type Line struct {
	base *linenotify.Notifier
}

func NewLine(cfg config.LineConfig) *Line {
	client := &http.Client{Timeout: cfg.TimeoutDuration()}
	return &Line{
		base: linenotify.New(cfg.Token,
			linenotify.WithEndpoint(cfg.Endpoint),
			linenotify.WithHTTPClient(client),
		),
	}
}

func (l *Line) Name() string { return "line" }

func (l *Line) Send(ctx context.Context, p models.Payload) (models.Delivery, error) {
	n := l.base.
		SetMessage(p.Message).
		SetImageThumb(p.ImageThumb).
		SetImageFull(p.ImageFull).
		SetImageFile(p.ImageFile)

	d := models.Delivery{
		Notifier:       l.Name(),
		Timestamp:      time.Now(),
		Payload:        p,
		RateRemaining:  -1,
		ImageRemaining: -1,
	}

	resp, err := n.Send(ctx)
	if err != nil {
		d.Outcome = models.OutcomeFailed
		d.Error = err.Error()
		return d, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		slog.Debug("reading LINE response body", "status", resp.StatusCode, "error", err)
		d.Error = "reading response: " + err.Error()
	}
	rl := linenotify.RateLimitFromHeader(resp.Header)

	d.StatusCode = resp.StatusCode
	d.Outcome = models.OutcomeForStatus(resp.StatusCode)
	d.Response = strings.TrimSpace(string(body))
	d.RateRemaining = rl.Remaining
	d.ImageRemaining = rl.ImageRemaining
	return d, nil
}

func (l *Line) Test(ctx context.Context) (models.Delivery, error) {
	return l.Send(ctx, models.Payload{Message: testMessage})
}
