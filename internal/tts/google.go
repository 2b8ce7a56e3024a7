// Package tts speaks replies through the Google Translate TTS endpoint.
// Audio comes back as MP3 and is played synchronously, chunk by chunk.
package tts

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"vani/internal/audio"
)

// the endpoint rejects long q values, so text is spoken in sentence chunks
const maxChunkRunes = 180

var langTLD = map[string]string{
	"en": "com",
	"hi": "co.in",
	"gu": "co.in",
	"mr": "co.in",
	"pa": "co.in",
	"bn": "co.in",
	"ta": "co.in",
	"te": "co.in",
	"kn": "co.in",
	"ml": "co.in",
	"es": "es",
	"fr": "fr",
	"de": "de",
	"ja": "co.jp",
	"zh": "com",
}

// Speaker synthesizes and plays speech. A nil ducker disables volume
// ducking of other applications during playback.
type Speaker struct {
	http   *http.Client
	player *audio.Player
	ducker *audio.Ducker
	log    *slog.Logger
	base   string // endpoint override for tests, "" uses translate.google.<tld>
}

func NewSpeaker(httpClient *http.Client, player *audio.Player, ducker *audio.Ducker, log *slog.Logger) *Speaker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Speaker{http: httpClient, player: player, ducker: ducker, log: log}
}

// Speak synthesizes text in the given language and blocks until playback
// finishes. Empty or whitespace-only text is a no-op.
func (s *Speaker) Speak(ctx context.Context, text, lang string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if s.ducker != nil {
		if err := s.ducker.Lower(ctx, 0.3, 200*time.Millisecond); err != nil {
			s.log.Warn("could not duck other streams", "error", err)
		}
		defer func() {
			if err := s.ducker.Restore(context.WithoutCancel(ctx), 200*time.Millisecond); err != nil {
				s.log.Warn("could not restore other streams", "error", err)
			}
		}()
	}

	s.log.Info("speaking", "lang", lang, "chars", len(text))

	for _, chunk := range chunkText(text, maxChunkRunes) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.speakChunk(ctx, chunk, lang); err != nil {
			return err
		}
	}
	return nil
}

func (s *Speaker) speakChunk(ctx context.Context, chunk, lang string) error {
	endpoint := s.base
	if endpoint == "" {
		tld, ok := langTLD[lang]
		if !ok {
			tld = "com"
		}
		endpoint = "https://translate.google." + tld
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create tts request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.http.Do(req)
	if err != nil {
		return goerr.Wrap(err, "tts request failed")
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return goerr.New("tts endpoint returned error",
			goerr.V("status", resp.StatusCode), goerr.V("lang", lang))
	}

	// PlayMP3 closes the body through the decoder
	return s.player.PlayMP3(resp.Body)
}

// Stop cuts playback immediately.
func (s *Speaker) Stop() {
	s.player.Stop()
}

var sentenceEnders = []string{"। ", ". ", "? ", "! ", "| "}

// chunkText splits at sentence boundaries so no piece exceeds limit runes.
// Sentences longer than the limit are hard-split.
func chunkText(text string, limit int) []string {
	var chunks []string
	rest := text

	for len([]rune(rest)) > limit {
		window := string([]rune(rest)[:limit])

		cut := -1
		for _, end := range sentenceEnders {
			if i := strings.LastIndex(window, end); i > cut {
				cut = i + len(end)
			}
		}
		if cut <= 0 {
			if i := strings.LastIndex(window, " "); i > 0 {
				cut = i + 1
			} else {
				cut = len(window)
			}
		}

		chunks = append(chunks, strings.TrimSpace(rest[:cut]))
		rest = strings.TrimSpace(rest[cut:])
	}

	if rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}
