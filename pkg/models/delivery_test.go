package models

import "testing"

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{OutcomeDelivered, "delivered"},
		{OutcomeRejected, "rejected"},
		{OutcomeFailed, "failed"},
		{Outcome(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.o, got, tt.want)
		}
	}
}

func TestOutcome_Emoji(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{OutcomeDelivered, "✅"},
		{OutcomeFailed, "🔴"},
		{OutcomeRejected, "🟡"},
		{Outcome(99), "🟡"}, // default case
	}
	for _, tt := range tests {
		if got := tt.o.Emoji(); got != tt.want {
			t.Errorf("Outcome(%d).Emoji() = %q, want %q", tt.o, got, tt.want)
		}
	}
}

func TestOutcomeForStatus(t *testing.T) {
	tests := []struct {
		code int
		want Outcome
	}{
		{200, OutcomeDelivered},
		{204, OutcomeDelivered},
		{299, OutcomeDelivered},
		{199, OutcomeRejected},
		{400, OutcomeRejected},
		{401, OutcomeRejected},
		{500, OutcomeRejected},
	}
	for _, tt := range tests {
		if got := OutcomeForStatus(tt.code); got != tt.want {
			t.Errorf("OutcomeForStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestPayload_HasImage(t *testing.T) {
	tests := []struct {
		name string
		p    Payload
		want bool
	}{
		{"empty", Payload{}, false},
		{"message only", Payload{Message: "hi"}, false},
		{"thumb", Payload{ImageThumb: "t"}, true},
		{"full", Payload{ImageFull: "f"}, true},
		{"file", Payload{ImageFile: "/x.png"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.HasImage(); got != tt.want {
				t.Errorf("HasImage() = %v, want %v", got, tt.want)
			}
		})
	}
}
