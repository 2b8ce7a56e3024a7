// Package intent classifies transcribed utterances into routing categories
// using static multilingual phrase tables (English, Hindi, Gujarati). All
// predicates are pure functions of the input text.
package intent

import (
	"strings"
)

type Kind int

const (
	KindChat Kind = iota
	KindVision
	KindDesktop
	KindExit
	KindReset
	KindIdentity
)

func (k Kind) String() string {
	switch k {
	case KindVision:
		return "vision"
	case KindDesktop:
		return "desktop"
	case KindExit:
		return "exit"
	case KindReset:
		return "reset"
	case KindIdentity:
		return "identity"
	default:
		return "chat"
	}
}

// Augment says which search backend, if any, should feed the chat prompt.
type Augment int

const (
	AugmentNone Augment = iota
	AugmentWeb
	AugmentNews
	AugmentKnowledge
)

func (a Augment) String() string {
	switch a {
	case AugmentWeb:
		return "web"
	case AugmentNews:
		return "news"
	case AugmentKnowledge:
		return "knowledge"
	default:
		return "none"
	}
}

type Intent struct {
	Kind    Kind
	Augment Augment
}

// Classifier evaluates predicates in strict priority order: vision, desktop,
// exit, reset, identity, then chat. Desktop matching needs the automation
// package's command tables, so it is injected to keep this package free of
// external state. Desktop is checked before exit on purpose: "बंद करो टर्मिनल"
// must close the terminal, not end the session.
type Classifier struct {
	DesktopMatch func(text string) bool
}

func (c Classifier) Classify(text string) Intent {
	cmd := Normalize(text)

	if NeedsVision(cmd) {
		return Intent{Kind: KindVision}
	}
	if c.DesktopMatch != nil && c.DesktopMatch(cmd) {
		return Intent{Kind: KindDesktop}
	}
	if IsExit(cmd) {
		return Intent{Kind: KindExit}
	}
	if IsReset(cmd) {
		return Intent{Kind: KindReset}
	}
	if IsIdentity(cmd) {
		return Intent{Kind: KindIdentity}
	}
	return Intent{Kind: KindChat, Augment: ClassifyAugment(cmd)}
}

// Normalize lowercases the text and strips trailing punctuation, the shared
// preprocessing for every predicate.
func Normalize(text string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), ".!?,।")
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

var visionTriggers = []string{
	"what do you see", "what can you see", "look at", "describe what you see",
	"tell me what you see", "camera", "take a look", "show me",
	"क्या दिख रहा है", "क्या देख रहा है", "क्या दीख रहा है",
	"देखो", "दिखाओ", "देख", "क्या है",
	"यह क्या है", "ये क्या है",
	"कैमरा", "कैमरे से देखो",
	"તમે શું જુઓ છો", "શું દેખાય છે", "શું જોવા મળે છે",
	"જુઓ", "દેખાવો", "શું છે",
	"આ શું છે", "એ શું છે",
	"કેમેરા", "કેમેરાથી જુઓ",
}

var visionQuestionPatterns = []string{
	"how many people", "how many person", "who is", "who are",
	"is there a person", "are there people", "anyone here",
	"कितने लोग", "कितने व्यक्ति", "कौन है", "कोई व्यक्ति",
	"કેટલા લોકો", "કોણ છે", "કોઈ વ્યક્તિ",
	"what object", "what is on", "what is in front",
	"how many object", "count the", "objects in",
	"क्या वस्तु", "कितनी वस्तु", "कितने चीज",
	"શું વસ્તુ", "કેટલી વસ્તુ",
	"what color", "what colour", "color of",
	"क्या रंग", "रंग कैसा", "કયો રંગ", "રંગ શું",
	"where is", "where am i", "what room", "what place",
	"कहाँ है", "कहाँ हूँ", "कौन सा कमरा", "ક્યાં છે", "ક્યાં છું",
	"describe the", "describe this", "what is this",
	"tell me about this", "read this", "what does it say",
	"बताओ यह", "यह क्या", "વર્ણન કરો", "આ શું",
	"read the text", "read what",
	"पढ़ो", "क्या लिखा है", "વાંચો", "શું લખ્યું છે",
}

var visualNouns = []string{
	"person", "people", "face", "man", "woman",
	"object", "thing", "item",
	"room", "wall", "door", "window",
	"व्यक्ति", "लोग", "वस्तु", "कमरा", "दीवार",
	"લોકો", "વસ્તુ", "રૂમ", "દિવાલ",
}

var questionWords = []string{
	"what", "how many", "which", "where", "is there",
	"क्या", "कितने", "कहाँ", "કયું", "કેટલા", "ક્યાં",
}

var visionVerbs = []string{
	"see", "look", "watch", "view", "show",
	"देख", "दिख", "दीख", "दिखा", "देखो",
	"જુઓ", "જોવું", "દેખાવો",
}

var whatWords = []string{"what", "क्या", "કયું", "કેમ"}

// NeedsVision reports whether the utterance asks about something the camera
// would have to answer. The checks fall through from explicit triggers to
// question patterns to the question-word + visual-noun conjunction.
func NeedsVision(text string) bool {
	cmd := Normalize(text)

	if containsAny(cmd, visionTriggers) {
		return true
	}
	if containsAny(cmd, visionQuestionPatterns) {
		return true
	}
	if containsAny(cmd, questionWords) && containsAny(cmd, visualNouns) {
		return true
	}
	if containsAny(cmd, visionVerbs) {
		if strings.Contains(cmd, "?") || containsAny(cmd, whatWords) {
			return true
		}
	}
	return false
}

var explicitSearch = []string{
	"search", "find", "look up", "google", "search for",
	"खोजें", "ढूंढें", "सर्च",
	"શોધો", "શોધ",
}

var newsKeywords = []string{
	"news", "latest", "recent", "update", "happening", "today",
	"समाचार", "ख़बर", "ताज़ा", "आज",
	"સમાચાર", "તાજા", "આજે",
}

var timeSensitive = []string{
	"weather", "temperature", "forecast",
	"price", "cost", "value", "worth",
	"stock", "market", "rate",
	"score", "match", "game", "result",
	"event", "concert", "show",
	"मौसम", "तापमान", "कीमत", "स्टॉक",
	"હવામાન", "કિંમત", "સ્ટોક",
}

var currentInfoPatterns = []string{
	"what is happening", "what happened", "who won", "who is",
	"where is", "when is", "how much", "current",
	"क्या हो रहा", "क्या हुआ", "कौन है", "वर्तमान",
	"શું થઈ રહ્યું", "શું થયું", "કોણ છે", "વર્તમાન",
}

// NeedsWebSearch reports whether the utterance likely needs current
// information from the web.
func NeedsWebSearch(text string) bool {
	q := Normalize(text)
	return containsAny(q, explicitSearch) ||
		containsAny(q, newsKeywords) ||
		containsAny(q, timeSensitive) ||
		containsAny(q, currentInfoPatterns)
}

var newsSubwords = []string{"news", "latest", "recent", "समाचार", "સમાચાર"}

// IsNews reports whether a search-worthy utterance is specifically about news.
func IsNews(text string) bool {
	q := Normalize(text)
	return NeedsWebSearch(q) && containsAny(q, newsSubwords)
}

var knowledgePatterns = []string{
	"what is", "who is", "what are", "who are",
	"tell me about", "explain", "describe",
	"definition of", "meaning of", "history of",
	"क्या है", "कौन है", "बताओ", "समझाओ",
	"શું છે", "કોણ છે", "જણાવો", "સમજાવો",
}

// IsKnowledgeQuery reports whether the utterance asks for encyclopedic facts.
func IsKnowledgeQuery(text string) bool {
	return containsAny(Normalize(text), knowledgePatterns)
}

// ClassifyAugment picks the search strategy for a chat utterance.
func ClassifyAugment(text string) Augment {
	q := Normalize(text)
	switch {
	case IsNews(q):
		return AugmentNews
	case IsKnowledgeQuery(q):
		return AugmentKnowledge
	case NeedsWebSearch(q):
		return AugmentWeb
	default:
		return AugmentNone
	}
}

var exitWords = []string{
	"exit", "quit", "goodbye", "bye", "stop",
	"बाहर निकलें", "बंद करो", "अलविदा", "बाय",
	"બહાર નીકળો", "બંધ કરો", "અલવિદા", "બાય",
}

func IsExit(text string) bool {
	return containsAny(Normalize(text), exitWords)
}

var resetWords = []string{
	"reset", "clear history", "start over",
	"रीसेट", "इतिहास साफ़ करें",
	"રીસેટ", "ઇતિહાસ સાફ કરો",
}

func IsReset(text string) bool {
	return containsAny(Normalize(text), resetWords)
}

var identityPhrases = []string{
	"who are you", "what is your name", "your name",
	"तुम कौन हो", "तुम्हारा नाम क्या है",
	"તમે કોણ છો", "તમારું નામ શું છે",
}

func IsIdentity(text string) bool {
	return containsAny(Normalize(text), identityPhrases)
}
