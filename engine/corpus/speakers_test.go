package corpus

import "testing"

func TestExtractSpeakers(t *testing.T) {
	text := `Lenny Rachitsky (0:00:00):
Welcome to the show.

Claire Hughes (0:01:30):
Thanks for having me.

Lenny Rachitsky (0:02:15):
Let's dive in.`

	got := ExtractSpeakers(text)
	want := "Lenny Rachitsky, Claire Hughes"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestExtractSpeakersCapped(t *testing.T) {
	text := `Alice One (0:00:01):
a
Bob Two (0:00:02):
b
Carol Three (0:00:03):
c
Dave Four (0:00:04):
d`
	got := ExtractSpeakers(text)
	if got != "Alice One, Bob Two, Carol Three" {
		t.Fatalf("expected first three distinct speakers, got %q", got)
	}
}

func TestExtractSpeakersNone(t *testing.T) {
	if got := ExtractSpeakers("Plain prose without timestamps."); got != "" {
		t.Fatalf("expected empty hint, got %q", got)
	}
}

func TestExtractSpeakersMidLineIgnored(t *testing.T) {
	// Timestamp markers only count at the start of a line.
	if got := ExtractSpeakers("as Lenny Rachitsky (0:00:00): said"); got != "" {
		t.Fatalf("expected empty hint, got %q", got)
	}
}
