// Package prompt builds the text prompt sent to the language model. Given the
// same history, language and context blocks, the output is byte-identical.
package prompt

import (
	"strings"

	"vani/internal/config"
	"vani/internal/convo"
)

// historyWindow is how many trailing log entries are considered. The window
// is sliced first and then filtered by language; entries recorded in another
// language are skipped, not translated.
const historyWindow = 6

var systemInstructions = map[string]string{
	"en": "You are " + config.AssistantName + `, a helpful AI voice assistant with web search capability.
Respond ONLY in clear, natural English. Keep responses brief and conversational.
If web search results are provided, use them to give accurate, up-to-date information.
Cite sources when using web information.`,

	"hi": "तुम " + config.AssistantNameHI + ` हो, एक सहायक AI असिस्टेंट जो वेब खोज कर सकती है।
केवल हिंदी में जवाब दो। संक्षिप्त और स्पष्ट उत्तर दो। अंग्रेजी का प्रयोग बिल्कुल न करें।
अगर वेब खोज परिणाम दिए गए हैं, तो उनका उपयोग करके सटीक जानकारी दें।`,

	"gu": "તમે " + config.AssistantNameGU + ` છો, એક સહાયક AI આસિસ્ટન્ટ જે વેબ શોધ કરી શકે છે.
ફક્ત ગુજરાતીમાં જવાબ આપો। સંક્ષિપ્ત અને સ્પષ્ટ જવાબો આપો। અંગ્રેજીનો ઉપયોગ ન કરો।
જો વેબ શોધ પરિણામો આપવામાં આવે છે, તો તેનો ઉપયોગ કરીને સચોટ માહિતી આપો.`,
}

var visionHeaders = map[string]string{
	"en": "Visual information (from camera): ",
	"hi": "दृश्य जानकारी (कैमरा): ",
	"gu": "દ્રશ્ય માહિતી (કેમેરા): ",
}

type Input struct {
	Language      string
	UserInput     string
	SearchContext string // formatted search block, "" when absent
	VisionContext string // fresh camera description, "" when stale or absent
	History       []convo.Turn
}

// Assemble concatenates, in order: the language-specific system instruction,
// the search block and its use-instruction, the fresh vision block, the
// trailing history filtered to the request language, the new user turn and
// the generation cue.
func Assemble(in Input) string {
	var b strings.Builder

	instruction, ok := systemInstructions[in.Language]
	if !ok {
		instruction = "You are " + config.AssistantName +
			", a helpful AI assistant with web search. Respond ONLY in " + in.Language + "."
	}
	b.WriteString(instruction)
	b.WriteString("\n\n")

	if in.SearchContext != "" {
		b.WriteString(in.SearchContext)
		b.WriteString("\n\nUse the above web search information to answer the question.\n\n")
	}

	if in.VisionContext != "" {
		header, ok := visionHeaders[in.Language]
		if !ok {
			header = visionHeaders["en"]
		}
		b.WriteString(header)
		b.WriteString(in.VisionContext)
		b.WriteString("\n\n")
	}

	history := in.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for _, turn := range history {
		if turn.Language != in.Language {
			continue
		}
		if turn.Role == convo.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}

	b.WriteString("User: ")
	b.WriteString(in.UserInput)
	b.WriteString("\n")
	b.WriteString("Assistant: ")

	return b.String()
}

// Translation prompts used when a vision description has to be rendered in
// the user's language.
func TranslationPrompt(english, target string) (string, bool) {
	switch target {
	case "hi":
		return "Translate the following English text to Hindi. Only provide the Hindi translation, nothing else.\n\nEnglish: " +
			english + "\n\nHindi:", true
	case "gu":
		return "Translate the following English text to Gujarati. Only provide the Gujarati translation, nothing else.\n\nEnglish: " +
			english + "\n\nGujarati:", true
	default:
		return "", false
	}
}
