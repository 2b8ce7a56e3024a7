// Package router turns a classified utterance into a spoken reply by
// dispatching to the vision pipeline, desktop automation or the chat model
// with optional search augmentation.
package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"vani/internal/convo"
	"vani/internal/intent"
	"vani/internal/llm"
	"vani/internal/prompt"
	"vani/internal/search"
	"vani/internal/vision"
)

// TextModel is the conversational language model.
type TextModel interface {
	Generate(ctx context.Context, prompt string, opt llm.Options) (string, error)
}

// SceneDescriber answers questions about what the camera sees.
type SceneDescriber interface {
	SeeAndDescribe(ctx context.Context, question string) (string, error)
}

// Desktop executes machine commands. ok is false when the command turns out
// not to be a desktop operation.
type Desktop interface {
	Execute(ctx context.Context, command, lang string) (reply string, ok bool)
}

// WebSearcher provides general and news search.
type WebSearcher interface {
	Search(ctx context.Context, query string, max int) ([]search.Result, error)
	News(ctx context.Context, query string, max int) ([]search.Result, error)
}

// KnowledgeSource resolves encyclopedic queries.
type KnowledgeSource interface {
	Lookup(ctx context.Context, query, language string) ([]search.Result, error)
}

var chatOptions = llm.Options{Temperature: 0.7, TopP: 0.9, NumPredict: 500}
var translateOptions = llm.Options{Temperature: 0.3, NumPredict: 300}

type Router struct {
	Text    TextModel
	Vision  SceneDescriber
	Desktop Desktop
	Web     WebSearcher
	Wiki    KnowledgeSource

	State        *convo.State
	EnableSearch bool
	MaxResults   int

	Log *slog.Logger
	Now func() time.Time
}

func (r *Router) log() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

func (r *Router) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Dispatch produces the reply for one utterance. Exit, reset and identity
// intents are the session loop's business and must not reach here.
func (r *Router) Dispatch(ctx context.Context, userInput, lang string, it intent.Intent) (string, error) {
	switch it.Kind {
	case intent.KindVision:
		return r.handleVision(ctx, userInput, lang), nil
	case intent.KindDesktop:
		if reply, ok := r.Desktop.Execute(ctx, userInput, lang); ok {
			return reply, nil
		}
		// not actually a desktop command, answer it as chat
		return r.handleChat(ctx, userInput, lang, intent.ClassifyAugment(userInput))
	default:
		return r.handleChat(ctx, userInput, lang, it.Augment)
	}
}

var cameraApology = map[string]string{
	"en": "I cannot access the camera right now",
	"hi": "मैं कैमरा एक्सेस नहीं कर पा रहा हूं",
	"gu": "હું કેમેરાને ઍક્સેસ કરી શકતો નથી",
}

var visionPrefix = map[string]string{
	"en": "I can see: ",
	"hi": "मैं देख रहा हूं: ",
	"gu": "હું જોઈ રહ્યો છું: ",
}

// handleVision captures the scene and phrases the description in the user's
// language. A camera or model failure becomes a spoken apology rather than
// an error, and vision exchanges never enter the conversation log.
func (r *Router) handleVision(ctx context.Context, userInput, lang string) string {
	question := vision.GenerateQuestion(userInput)
	r.log().Info("vision question", "question", question)

	description, err := r.Vision.SeeAndDescribe(ctx, question)
	if err != nil {
		r.log().Error("vision failed", "error", err)
		if msg, ok := cameraApology[lang]; ok {
			return msg
		}
		return cameraApology["en"]
	}

	r.State.SetVision(description, r.now())

	spoken := description
	if lang != "en" {
		spoken = r.translate(ctx, description, lang)
	}

	prefix, ok := visionPrefix[lang]
	if !ok {
		prefix = visionPrefix["en"]
	}
	return prefix + spoken
}

// translate renders an English vision description in the target language,
// falling back to the English original when translation fails.
func (r *Router) translate(ctx context.Context, english, lang string) string {
	p, ok := prompt.TranslationPrompt(english, lang)
	if !ok {
		return english
	}

	out, err := r.Text.Generate(ctx, p, translateOptions)
	if err != nil || out == "" {
		r.log().Warn("translation failed, using english", "lang", lang, "error", err)
		return english
	}
	return out
}

func (r *Router) handleChat(ctx context.Context, userInput, lang string, augment intent.Augment) (string, error) {
	searchContext := ""
	if r.EnableSearch {
		if results := r.gatherResults(ctx, userInput, lang, augment); len(results) > 0 {
			searchContext = search.Format(results, lang)
			r.log().Info("search context attached", "results", len(results), "augment", augment.String())
		}
	}

	p := prompt.Assemble(prompt.Input{
		Language:      lang,
		UserInput:     userInput,
		SearchContext: searchContext,
		VisionContext: r.State.FreshVision(r.now()),
		History:       r.State.Recent(r.State.Len()),
	})

	reply, err := r.Text.Generate(ctx, p, chatOptions)
	if err != nil {
		return "", goerr.Wrap(err, "chat generation failed")
	}
	if reply == "" {
		return "", goerr.New("model returned empty reply")
	}

	r.State.Append(convo.Turn{Role: convo.RoleUser, Content: userInput, Language: lang})
	r.State.Append(convo.Turn{Role: convo.RoleAssistant, Content: reply, Language: lang})

	return reply, nil
}

// gatherResults picks the backend for the augment strategy. Failures
// degrade to answering from model knowledge alone.
func (r *Router) gatherResults(ctx context.Context, userInput, lang string, augment intent.Augment) []search.Result {
	switch augment {
	case intent.AugmentNews:
		results, err := r.Web.News(ctx, userInput, r.MaxResults)
		if err != nil {
			r.log().Warn("news search failed", "error", err)
			return nil
		}
		return results

	case intent.AugmentKnowledge:
		results, err := r.Wiki.Lookup(ctx, userInput, lang)
		if err != nil {
			r.log().Warn("knowledge lookup failed", "error", err)
		}
		if len(results) > 0 {
			return results
		}
		// no article, fall back to the open web
		results, err = r.Web.Search(ctx, userInput, r.MaxResults)
		if err != nil {
			r.log().Warn("web search failed", "error", err)
			return nil
		}
		return results

	case intent.AugmentWeb:
		results, err := r.Web.Search(ctx, userInput, r.MaxResults)
		if err != nil {
			r.log().Warn("web search failed", "error", err)
			return nil
		}
		return results

	default:
		return nil
	}
}
