// Package assistant runs the voice session: cue tone, record, transcribe,
// dispatch, speak, repeat. It also services control commands arriving over
// the unix socket.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"vani/internal/audio"
	"vani/internal/config"
	"vani/internal/convo"
	"vani/internal/intent"
	"vani/internal/ipc"
	"vani/internal/router"
	"vani/pkg/stt"
)

type Recorder interface {
	RecordAuto() ([]float32, error)
}

type Transcriber interface {
	TranscribePCM(ctx context.Context, pcm []float32, opt stt.Options) (stt.Result, error)
}

type Speech interface {
	Speak(ctx context.Context, text, lang string) error
	Stop()
}

type Cue interface {
	Tone(freq float64, dur time.Duration) error
}

// Events is the optional bus publisher. A nil Events drops everything.
type Events interface {
	Publish(kind, language, content string)
}

type Assistant struct {
	Recorder   Recorder
	STT        Transcriber
	TTS        Speech
	Cue        Cue
	Router     *router.Router
	State      *convo.State
	Classifier intent.Classifier
	Events     Events
	Log        *slog.Logger

	// wav dump directory, empty disables
	SaveRecordings string

	mu     sync.Mutex
	cancel context.CancelFunc
	ctl    chan string
}

var goodbyes = map[string]string{
	"en": "Goodbye! " + config.AssistantName + " signing off.",
	"hi": "अलविदा! " + config.AssistantNameHI + " विदा ले रही है।",
	"gu": "આવજો! " + config.AssistantNameGU + " જતી રહી છે.",
}

var resetAcks = map[string]string{
	"en": "Conversation history cleared",
	"hi": "बातचीत का इतिहास साफ़ हो गया",
	"gu": "વાતચીત ઇતિહાસ સાફ થયો",
}

var introductions = map[string]string{
	"en": "I am " + config.AssistantName + ", your multilingual AI voice assistant. I can help you in English, Hindi, and Gujarati!",
	"hi": "मैं " + config.AssistantNameHI + " हूं, आपकी बहुभाषी AI आवाज सहायक। मैं अंग्रेजी, हिंदी और गुजराती में आपकी मदद कर सकती हूं!",
	"gu": "હું " + config.AssistantNameGU + " છું, તમારી બહુભાષી AI વૉઇસ આસિસ્ટન્ટ. હું અંગ્રેજી, હિન્દી અને ગુજરાતીમાં તમારી મદદ કરી શકું છું!",
}

var apologies = map[string]string{
	"en": "I'm sorry, I couldn't process that",
	"hi": "क्षमा करें, मैं इसे संसाधित नहीं कर सका",
	"gu": "માફ કરશો, હું તેને પ્રક્રિયા કરી શક્યો નહીં",
}

func localized(table map[string]string, lang string) string {
	if msg, ok := table[lang]; ok {
		return msg
	}
	return table["en"]
}

func (a *Assistant) ctlChan() chan string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctl == nil {
		a.ctl = make(chan string, 4)
	}
	return a.ctl
}

// ControlHandler services vani-ctl commands. reset and stop take effect
// between loop iterations; stop additionally interrupts the session context.
func (a *Assistant) ControlHandler() ipc.Handler {
	return func(cmd ipc.Command) ipc.Response {
		switch cmd.Cmd {
		case "status":
			return ipc.Response{OK: true, Detail: "listening"}
		case "reset", "stop":
			select {
			case a.ctlChan() <- cmd.Cmd:
			default:
			}
			if cmd.Cmd == "stop" {
				a.TTS.Stop()
				a.mu.Lock()
				if a.cancel != nil {
					a.cancel()
				}
				a.mu.Unlock()
			}
			return ipc.Response{OK: true}
		default:
			return ipc.Response{OK: false, Detail: "unknown command: " + cmd.Cmd}
		}
	}
}

// Run drives the session loop until ctx is cancelled or the user says
// goodbye.
func (a *Assistant) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctl := a.ctlChan()
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.Log.Info("ready", "name", config.AssistantName, "languages", "en,hi,gu")
	a.publish("state", "", "listening")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-ctl:
			if cmd == "stop" {
				return nil
			}
			a.State.Reset()
			a.Log.Info("conversation reset via control socket")
			continue
		default:
		}

		if err := a.Cue.Tone(880, 150*time.Millisecond); err != nil {
			a.Log.Warn("cue tone failed", "error", err)
		}

		samples, err := a.Recorder.RecordAuto()
		if err != nil {
			if errors.Is(err, audio.ErrNoSpeech) {
				continue
			}
			a.Log.Error("recording failed", "error", err)
			continue
		}

		if a.SaveRecordings != "" {
			if path, err := audio.SaveWAV(a.SaveRecordings, samples); err == nil {
				a.Log.Debug("recording saved", "path", path)
			}
		}

		result, err := a.STT.TranscribePCM(ctx, samples, stt.Options{Language: "auto", BeamSize: 5})
		if err != nil {
			a.Log.Error("transcription failed", "error", err)
			continue
		}

		text := strings.TrimSpace(result.Text)
		if text == "" {
			continue
		}

		lang := result.Language
		a.Log.Info("heard", "text", text, "lang", lang)
		a.publish("transcript", lang, text)

		done, err := a.handleUtterance(ctx, text, lang)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.Log.Error("dispatch failed", "error", err)
			a.speak(ctx, localized(apologies, lang), lang)
		}
		if done {
			return nil
		}
	}
}

// handleUtterance routes one utterance. done is true when the user ended
// the session.
func (a *Assistant) handleUtterance(ctx context.Context, text, lang string) (done bool, err error) {
	it := a.Classifier.Classify(text)
	a.Log.Debug("classified", "kind", it.Kind.String(), "augment", it.Augment.String())
	a.publish("intent", lang, it.Kind.String())

	switch it.Kind {
	case intent.KindExit:
		a.speak(ctx, localized(goodbyes, lang), lang)
		a.publish("state", lang, "stopped")
		return true, nil

	case intent.KindReset:
		a.State.Reset()
		a.speak(ctx, localized(resetAcks, lang), lang)
		return false, nil

	case intent.KindIdentity:
		a.speak(ctx, localized(introductions, lang), lang)
		return false, nil
	}

	reply, err := a.Router.Dispatch(ctx, text, lang, it)
	if err != nil {
		return false, err
	}

	a.publish("reply", lang, reply)
	a.speak(ctx, reply, lang)
	return false, nil
}

// RunFile transcribes one audio file and answers it, for scripted use and
// debugging without a microphone.
func (a *Assistant) RunFile(ctx context.Context, samples []float32) (string, error) {
	result, err := a.STT.TranscribePCM(ctx, samples, stt.Options{Language: "auto", BeamSize: 5})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", nil
	}
	lang := result.Language
	a.Log.Info("heard", "text", text, "lang", lang)

	it := a.Classifier.Classify(text)
	switch it.Kind {
	case intent.KindExit:
		return localized(goodbyes, lang), nil
	case intent.KindReset:
		a.State.Reset()
		return localized(resetAcks, lang), nil
	case intent.KindIdentity:
		return localized(introductions, lang), nil
	}

	reply, err := a.Router.Dispatch(ctx, text, lang, it)
	if err != nil {
		return "", err
	}
	a.speak(ctx, reply, lang)
	return reply, nil
}

func (a *Assistant) speak(ctx context.Context, text, lang string) {
	if err := a.TTS.Speak(ctx, text, lang); err != nil {
		a.Log.Error("speech failed", "error", err)
	}
}

func (a *Assistant) publish(kind, lang, content string) {
	if a.Events == nil {
		return
	}
	a.Events.Publish(kind, lang, content)
}
