package models

import "time"

// Outcome classifies how a delivery attempt ended
type Outcome int

const (
	OutcomeDelivered Outcome = iota // API answered 2xx
	OutcomeRejected                 // API answered with any other status
	OutcomeFailed                   // no response: validation, file or transport error
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

func (o Outcome) Emoji() string {
	switch o {
	case OutcomeDelivered:
		return "✅"
	case OutcomeFailed:
		return "🔴"
	default:
		return "🟡"
	}
}

// OutcomeForStatus maps an HTTP status code to an outcome
func OutcomeForStatus(code int) Outcome {
	if code >= 200 && code < 300 {
		return OutcomeDelivered
	}
	return OutcomeRejected
}

// Payload is what a caller asks to send
type Payload struct {
	Message    string `json:"message,omitempty"`
	ImageThumb string `json:"image_thumb,omitempty"`
	ImageFull  string `json:"image_full,omitempty"`
	ImageFile  string `json:"image_file,omitempty"`
}

// HasImage reports whether any image source is set, complete or not
func (p Payload) HasImage() bool {
	return p.ImageThumb != "" || p.ImageFull != "" || p.ImageFile != ""
}

// Delivery records one send attempt
type Delivery struct {
	ID         string    `json:"id"`
	Notifier   string    `json:"notifier"`
	Timestamp  time.Time `json:"timestamp"`
	Outcome    Outcome   `json:"outcome"`
	StatusCode int       `json:"status_code"` // 0 when no response was received
	Payload    Payload   `json:"payload"`
	Response   string    `json:"response,omitempty"` // raw API body, truncated
	Error      string    `json:"error,omitempty"`    // set when no response was received

	// Quota reported by the API, -1 when unknown
	RateRemaining  int `json:"rate_remaining"`
	ImageRemaining int `json:"image_remaining"`
}
