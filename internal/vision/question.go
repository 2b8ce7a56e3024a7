package vision

import "strings"

// trigger maps utterance keywords to the question the vision model is asked.
// Order matters: more specific intents come before the generic describe.
type trigger struct {
	any      []string // match if any keyword is contained
	question string
}

var triggers = []trigger{
	{
		any:      []string{"time", "clock", "watch", "समय", "घड़ी", "સમય", "ઘડિયાળ"},
		question: "What time is shown on any clock, watch, or time display visible in this image? Read the exact time.",
	},
	{
		any:      []string{"how many people", "how many person", "कितने लोग", "કેટલા લોકો"},
		question: "How many people are in this image? Count them carefully.",
	},
	{
		any:      []string{"who is", "who are", "कौन है", "કોણ છે"},
		question: "Describe the people in this image. Who do you see?",
	},
	{
		any:      []string{"how many object", "count", "कितने", "કેટલા"},
		question: "Count and list all the objects you can see in this image.",
	},
	{
		any:      []string{"what color", "what colour", "रंग", "રંગ"},
		question: "What colors do you see in this image? Describe them in detail.",
	},
	{
		any:      []string{"where am i", "what room", "what place", "कहाँ", "ક્યાં"},
		question: "Describe this location. What kind of room or place is this? What can you see?",
	},
	{
		any:      []string{"read", "text", "written", "पढ़", "लिखा", "વાંચ", "લખ્યું"},
		question: "Read all the text visible in this image. What does it say?",
	},
	{
		any:      []string{"what is this", "what is on", "what is in"},
		question: "Describe the main object or item in this image in detail.",
	},
	{
		any:      []string{"weather", "temperature", "मौसम", "હવામાન"},
		question: "If there's a weather display or temperature reading visible, what does it show?",
	},
	{
		any:      []string{"price", "cost", "how much", "कीमत", "કિંમત"},
		question: "If there are any prices or monetary values visible, what are they?",
	},
	{
		any:      []string{"screen", "monitor", "display", "phone", "स्क्रीन", "સ્ક્રીન"},
		question: "What is displayed on the screen or monitor in this image? Describe what you see.",
	},
	{
		any:      []string{"sign", "label", "साइन", "લેબલ"},
		question: "What signs, labels, or text are visible in this image? Read them.",
	},
	{
		any:      []string{"what do you see", "what can you see", "describe", "दिख रहा", "देख रहा", "જુઓ છો"},
		question: "Describe everything visible in this image in detail - including people, objects, text, numbers, colors, and any information displayed.",
	},
}

var interrogatives = []string{
	"what", "how", "where", "when", "why", "who", "which",
	"क्या", "कैसे", "कहाँ", "कब", "क्यों", "कौन",
	"શું", "કેમ", "ક્યાં", "ક્યારે", "કોણ",
}

const describeAll = "Describe everything you see in this image in detail, including any text, numbers, people, objects, colors, and the setting. Be specific and thorough."

// GenerateQuestion maps the user's utterance to a question the vision model
// answers well. Unknown commands that start with a question word are passed
// through verbatim; everything else falls back to a full scene description.
func GenerateQuestion(command string) string {
	cmd := strings.ToLower(command)

	for _, t := range triggers {
		for _, kw := range t.any {
			if strings.Contains(cmd, kw) {
				return t.question
			}
		}
	}

	question := strings.TrimSpace(command)
	for _, qw := range interrogatives {
		if strings.HasPrefix(strings.ToLower(question), qw) {
			return "Answer this question about the image: " + question
		}
	}

	return describeAll
}
