package intent_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"vani/internal/intent"
)

func TestNeedsVision(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"explicit english trigger", "What do you see right now?", true},
		{"camera keyword", "turn towards the camera", true},
		{"hindi trigger", "क्या दिख रहा है", true},
		{"hindi look", "देखो सामने", true},
		{"gujarati trigger", "તમે શું જુઓ છો", true},
		{"gujarati camera", "કેમેરાથી જુઓ", true},
		{"people count pattern", "how many people are in the room", true},
		{"hindi people count", "कितने लोग हैं", true},
		{"gujarati people count", "કેટલા લોકો છે", true},
		{"read text pattern", "read the text on the board", true},
		{"question plus visual noun", "is there a person at the door", true},
		{"vision verb plus question word", "what can I show you", true},
		{"plain chat", "tell me a joke", false},
		{"greeting", "good morning", false},
		{"math question", "how much is two plus two", false},
		{"music request", "play some music", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, intent.NeedsVision(tt.text)).Equal(tt.want)
		})
	}
}

func TestNeedsWebSearch(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"What's the weather today?", true},
		{"search for golang tutorials", true},
		{"latest cricket score", true},
		{"मौसम कैसा है", true},
		{"સમાચાર શું છે", true},
		{"stock market rate", true},
		{"tell me a story", false},
		{"thank you", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gt.V(t, intent.NeedsWebSearch(tt.text)).Equal(tt.want)
		})
	}
}

func TestClassifyAugment(t *testing.T) {
	tests := []struct {
		text string
		want intent.Augment
	}{
		{"latest news about the election", intent.AugmentNews},
		{"समाचार सुनाओ आज के", intent.AugmentNews},
		{"what is photosynthesis", intent.AugmentKnowledge},
		{"tell me about the taj mahal", intent.AugmentKnowledge},
		{"What's the weather today?", intent.AugmentWeb},
		// "today" is a news keyword for the web predicate but not a news
		// subword, so this stays a general web search.
		{"gold price today", intent.AugmentWeb},
		{"sing me a song", intent.AugmentNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			gt.V(t, intent.ClassifyAugment(tt.text)).Equal(tt.want)
		})
	}
}

func TestControlPredicates(t *testing.T) {
	gt.True(t, intent.IsExit("okay goodbye"))
	gt.True(t, intent.IsExit("बंद करो"))
	gt.True(t, intent.IsExit("અલવિદા"))
	gt.V(t, intent.IsExit("hello there")).Equal(false)

	gt.True(t, intent.IsReset("reset"))
	gt.True(t, intent.IsReset("please clear history"))
	gt.True(t, intent.IsReset("इतिहास साफ़ करें"))
	gt.V(t, intent.IsReset("restart the song")).Equal(false)

	gt.True(t, intent.IsIdentity("who are you"))
	gt.True(t, intent.IsIdentity("तुम कौन हो"))
	gt.True(t, intent.IsIdentity("તમે કોણ છો"))
	gt.V(t, intent.IsIdentity("who is the president")).Equal(false)
}

func TestClassifyPriority(t *testing.T) {
	c := intent.Classifier{
		DesktopMatch: func(text string) bool {
			return strings.Contains(text, "टर्मिनल") || strings.Contains(text, "terminal") ||
				strings.Contains(text, "screenshot")
		},
	}

	// Vision outranks everything.
	gt.V(t, c.Classify("look at the terminal and tell me what you see").Kind).Equal(intent.KindVision)

	// Desktop outranks exit: a close command that names an application must
	// not end the session even though it contains an exit word.
	gt.V(t, c.Classify("बंद करो टर्मिनल").Kind).Equal(intent.KindDesktop)
	gt.V(t, c.Classify("take a screenshot").Kind).Equal(intent.KindDesktop)

	// A bare exit word with no desktop target still exits.
	gt.V(t, c.Classify("stop").Kind).Equal(intent.KindExit)
	gt.V(t, c.Classify("goodbye").Kind).Equal(intent.KindExit)

	gt.V(t, c.Classify("reset").Kind).Equal(intent.KindReset)
	gt.V(t, c.Classify("what is your name").Kind).Equal(intent.KindIdentity)

	got := c.Classify("What's the weather today?")
	gt.V(t, got.Kind).Equal(intent.KindChat)
	gt.V(t, got.Augment).Equal(intent.AugmentWeb)

	got = c.Classify("tell me a joke")
	gt.V(t, got.Kind).Equal(intent.KindChat)
	gt.V(t, got.Augment).Equal(intent.AugmentNone)
}

func TestClassifyWithoutDesktopMatcher(t *testing.T) {
	var c intent.Classifier
	gt.V(t, c.Classify("stop").Kind).Equal(intent.KindExit)
}
