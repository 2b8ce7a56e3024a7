package desktop

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want bool
	}{
		{"open app english", "open the terminal", true},
		{"open app hindi verb", "टर्मिनल खोलो", true},
		{"open app gujarati", "ટર્મિનલ ખોલો", true},
		{"close app english", "close firefox", true},
		{"close app hindi", "बंद करो टर्मिनल", true},
		{"website by name", "open youtube", true},
		{"website by domain", "go to example.com", true},
		{"screenshot", "take a screenshot", true},
		{"screenshot hindi", "स्क्रीनशॉट लो", true},
		{"battery", "how is the battery", true},
		{"volume", "volume up please", true},

		{"bare stop is not desktop", "stop", false},
		{"bare exit is not desktop", "बंद करो", false},
		{"open without known app", "open the door", false},
		{"plain chat", "tell me a joke", false},
		{"start over is reset not desktop", "start over", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, Matches(tt.cmd)).Equal(tt.want)
		})
	}
}

func TestCanonicalApp(t *testing.T) {
	gt.V(t, canonicalApp("open the terminal")).Equal("terminal")
	gt.V(t, canonicalApp("बंद करो टर्मिनल")).Equal("terminal")
	gt.V(t, canonicalApp("કેલ્ક્યુલેટર ચાલુ કરો")).Equal("calculator")
	gt.V(t, canonicalApp("open the door")).Equal("")
}

func TestNormalize(t *testing.T) {
	gt.V(t, normalize("  Open Firefox!  ")).Equal("open firefox")
	gt.V(t, normalize("टर्मिनल खोलो।")).Equal("टर्मिनल खोलो")
}

func TestHasWebsite(t *testing.T) {
	gt.True(t, hasWebsite("open github for me"))
	gt.True(t, hasWebsite("visit the docs"))
	gt.True(t, hasWebsite("go to golang.org"))
	gt.V(t, hasWebsite("open the calculator")).Equal(false)
}

func TestExecuteFallsThrough(t *testing.T) {
	a := New(nil, t.TempDir(), 0)
	reply, ok := a.Execute(t.Context(), "tell me a joke", "en")
	gt.V(t, ok).Equal(false)
	gt.V(t, reply).Equal("")
}
