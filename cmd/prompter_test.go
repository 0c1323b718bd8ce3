package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type mockPrompter struct {
	answer bool
	err    error
	asked  []string
}

func (m *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	m.asked = append(m.asked, message)
	return m.answer, m.err
}

func TestDialogConfirmer_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		answer    bool
		err       error
		assumeYes bool
		want      bool
		wantAsked int
	}{
		{name: "accepted", answer: true, want: true, wantAsked: 1},
		{name: "declined", answer: false, want: false, wantAsked: 1},
		{name: "prompt cancelled", answer: true, err: errors.New("interrupt"), want: false, wantAsked: 1},
		{name: "assume yes", assumeYes: true, want: true, wantAsked: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			prompter := &mockPrompter{answer: tt.answer, err: tt.err}
			c := NewDialogConfirmer(prompter, &out, tt.assumeYes)

			got := c.Confirm("Install FFmpeg", "Do you want to run:\n  brew install ffmpeg")
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if len(prompter.asked) != tt.wantAsked {
				t.Errorf("prompter asked %d times, want %d", len(prompter.asked), tt.wantAsked)
			}
			if !strings.Contains(out.String(), "brew install ffmpeg") {
				t.Errorf("expected message to be shown, got %q", out.String())
			}
		})
	}
}

func TestDialogConfirmer_Notify(t *testing.T) {
	var out bytes.Buffer
	c := NewDialogConfirmer(&mockPrompter{}, &out, false)

	c.Notify("FFmpeg not available", "FFmpeg is required.")

	got := out.String()
	if !strings.Contains(got, "== FFmpeg not available ==") || !strings.Contains(got, "FFmpeg is required.") {
		t.Errorf("Notify() output = %q", got)
	}
}
