package router_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"vani/internal/convo"
	"vani/internal/intent"
	"vani/internal/llm"
	"vani/internal/router"
	"vani/internal/search"
)

type fakeText struct {
	prompts []string
	opts    []llm.Options
	reply   func(prompt string) (string, error)
}

func (f *fakeText) Generate(_ context.Context, prompt string, opt llm.Options) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opt)
	return f.reply(prompt)
}

type fakeVision struct {
	description string
	err         error
	questions   []string
}

func (f *fakeVision) SeeAndDescribe(_ context.Context, question string) (string, error) {
	f.questions = append(f.questions, question)
	return f.description, f.err
}

type fakeDesktop struct {
	reply string
	ok    bool
}

func (f *fakeDesktop) Execute(_ context.Context, _, _ string) (string, bool) {
	return f.reply, f.ok
}

type fakeSearch struct {
	webResults  []search.Result
	newsResults []search.Result
	wikiResults []search.Result
	webCalls    int
	newsCalls   int
	wikiCalls   int
}

func (f *fakeSearch) Search(_ context.Context, _ string, _ int) ([]search.Result, error) {
	f.webCalls++
	return f.webResults, nil
}

func (f *fakeSearch) News(_ context.Context, _ string, _ int) ([]search.Result, error) {
	f.newsCalls++
	return f.newsResults, nil
}

func (f *fakeSearch) Lookup(_ context.Context, _, _ string) ([]search.Result, error) {
	f.wikiCalls++
	return f.wikiResults, nil
}

func newRouter(text *fakeText, vis *fakeVision, desk *fakeDesktop, src *fakeSearch) (*router.Router, *convo.State) {
	state := convo.NewState(20, 60*time.Second)
	r := &router.Router{
		Text:         text,
		Vision:       vis,
		Desktop:      desk,
		Web:          src,
		Wiki:         src,
		State:        state,
		EnableSearch: true,
		MaxResults:   5,
		Now:          func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}
	return r, state
}

func TestDispatchChatWithWebSearch(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "It is sunny, 31 degrees.", nil }}
	src := &fakeSearch{webResults: []search.Result{{Title: "Weather", Snippet: "sunny"}}}
	r, state := newRouter(text, &fakeVision{}, &fakeDesktop{}, src)

	reply, err := r.Dispatch(context.Background(), "What's the weather today?", "en",
		intent.Intent{Kind: intent.KindChat, Augment: intent.AugmentWeb})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("It is sunny, 31 degrees.")

	gt.V(t, src.webCalls).Equal(1)
	gt.S(t, text.prompts[0]).Contains("Search Results:")
	gt.S(t, text.prompts[0]).Contains("User: What's the weather today?")

	gt.V(t, text.opts[0].Temperature).Equal(0.7)
	gt.V(t, text.opts[0].NumPredict).Equal(500)

	gt.V(t, state.Len()).Equal(2)
	turns := state.Recent(2)
	gt.V(t, turns[0].Role).Equal(convo.RoleUser)
	gt.V(t, turns[1].Content).Equal("It is sunny, 31 degrees.")
}

func TestDispatchChatNoSearchWhenDisabled(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "answer", nil }}
	src := &fakeSearch{webResults: []search.Result{{Title: "x"}}}
	r, _ := newRouter(text, &fakeVision{}, &fakeDesktop{}, src)
	r.EnableSearch = false

	_, err := r.Dispatch(context.Background(), "latest news", "en",
		intent.Intent{Kind: intent.KindChat, Augment: intent.AugmentNews})
	gt.NoError(t, err)
	gt.V(t, src.newsCalls).Equal(0)
	gt.V(t, strings.Contains(text.prompts[0], "Search Results:")).Equal(false)
}

func TestDispatchNewsAugment(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "headlines", nil }}
	src := &fakeSearch{newsResults: []search.Result{{Title: "Breaking", Source: "Example Times"}}}
	r, _ := newRouter(text, &fakeVision{}, &fakeDesktop{}, src)

	_, err := r.Dispatch(context.Background(), "latest news", "en",
		intent.Intent{Kind: intent.KindChat, Augment: intent.AugmentNews})
	gt.NoError(t, err)
	gt.V(t, src.newsCalls).Equal(1)
	gt.V(t, src.webCalls).Equal(0)
}

func TestDispatchKnowledgeFallsBackToWeb(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "explained", nil }}
	src := &fakeSearch{webResults: []search.Result{{Title: "fallback"}}}
	r, _ := newRouter(text, &fakeVision{}, &fakeDesktop{}, src)

	_, err := r.Dispatch(context.Background(), "what is photosynthesis", "en",
		intent.Intent{Kind: intent.KindChat, Augment: intent.AugmentKnowledge})
	gt.NoError(t, err)
	gt.V(t, src.wikiCalls).Equal(1)
	gt.V(t, src.webCalls).Equal(1)
	gt.S(t, text.prompts[0]).Contains("fallback")
}

func TestDispatchDesktop(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { t.Fatal("model must not be called"); return "", nil }}
	r, state := newRouter(text, &fakeVision{}, &fakeDesktop{reply: "Closed terminal", ok: true}, &fakeSearch{})

	reply, err := r.Dispatch(context.Background(), "बंद करो टर्मिनल", "hi",
		intent.Intent{Kind: intent.KindDesktop})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("Closed terminal")
	gt.V(t, state.Len()).Equal(0)
}

func TestDispatchDesktopFallsThroughToChat(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "chatting instead", nil }}
	r, _ := newRouter(text, &fakeVision{}, &fakeDesktop{ok: false}, &fakeSearch{})

	reply, err := r.Dispatch(context.Background(), "open your heart", "en",
		intent.Intent{Kind: intent.KindDesktop})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("chatting instead")
}

func TestDispatchVisionEnglish(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { t.Fatal("no translation for english"); return "", nil }}
	vis := &fakeVision{description: "a desk with two laptops"}
	r, state := newRouter(text, vis, &fakeDesktop{}, &fakeSearch{})

	reply, err := r.Dispatch(context.Background(), "what do you see", "en",
		intent.Intent{Kind: intent.KindVision})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("I can see: a desk with two laptops")

	gt.S(t, vis.questions[0]).Contains("Describe everything visible")
	gt.V(t, state.Vision().Description).Equal("a desk with two laptops")
	gt.V(t, state.Len()).Equal(0)
}

func TestDispatchVisionTranslated(t *testing.T) {
	text := &fakeText{reply: func(p string) (string, error) {
		gt.S(t, p).Contains("Translate the following English text to Hindi")
		return "एक लाल कुर्सी", nil
	}}
	vis := &fakeVision{description: "a red chair"}
	r, _ := newRouter(text, vis, &fakeDesktop{}, &fakeSearch{})

	reply, err := r.Dispatch(context.Background(), "क्या दिख रहा है", "hi",
		intent.Intent{Kind: intent.KindVision})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("मैं देख रहा हूं: एक लाल कुर्सी")

	gt.V(t, text.opts[0].Temperature).Equal(0.3)
	gt.V(t, text.opts[0].NumPredict).Equal(300)
}

func TestDispatchVisionTranslationFailureKeepsEnglish(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "", goerr.New("model offline") }}
	vis := &fakeVision{description: "a red chair"}
	r, _ := newRouter(text, vis, &fakeDesktop{}, &fakeSearch{})

	reply, err := r.Dispatch(context.Background(), "ક્યાં છું", "gu",
		intent.Intent{Kind: intent.KindVision})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("હું જોઈ રહ્યો છું: a red chair")
}

func TestDispatchVisionCameraFailure(t *testing.T) {
	vis := &fakeVision{err: goerr.New("no camera")}
	text := &fakeText{reply: func(string) (string, error) { return "", nil }}
	r, state := newRouter(text, vis, &fakeDesktop{}, &fakeSearch{})

	reply, err := r.Dispatch(context.Background(), "क्या दिख रहा है", "hi",
		intent.Intent{Kind: intent.KindVision})
	gt.NoError(t, err)
	gt.V(t, reply).Equal("मैं कैमरा एक्सेस नहीं कर पा रहा हूं")
	gt.V(t, state.Vision().Description).Equal("")
}

func TestDispatchEmptyModelReply(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "", nil }}
	r, state := newRouter(text, &fakeVision{}, &fakeDesktop{}, &fakeSearch{})

	_, err := r.Dispatch(context.Background(), "tell me a joke", "en",
		intent.Intent{Kind: intent.KindChat})
	gt.Error(t, err)
	gt.V(t, state.Len()).Equal(0)
}

func TestVisionContextFeedsFollowUpChat(t *testing.T) {
	text := &fakeText{reply: func(string) (string, error) { return "ok", nil }}
	vis := &fakeVision{description: "two people at a table"}
	r, _ := newRouter(text, vis, &fakeDesktop{}, &fakeSearch{})

	_, err := r.Dispatch(context.Background(), "what do you see", "en",
		intent.Intent{Kind: intent.KindVision})
	gt.NoError(t, err)

	_, err = r.Dispatch(context.Background(), "how many of them are there", "en",
		intent.Intent{Kind: intent.KindChat})
	gt.NoError(t, err)

	last := text.prompts[len(text.prompts)-1]
	gt.S(t, last).Contains("Visual information (from camera): two people at a table")
}
