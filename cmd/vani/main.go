package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"vani/internal/assistant"
	"vani/internal/audio"
	"vani/internal/bus"
	"vani/internal/config"
	"vani/internal/convo"
	"vani/internal/desktop"
	"vani/internal/intent"
	"vani/internal/ipc"
	"vani/internal/llm"
	"vani/internal/proxy"
	"vani/internal/router"
	"vani/internal/search"
	"vani/internal/tts"
	"vani/internal/vision"
	"vani/pkg/audioconv"
	"vani/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for outbound web requests")
	inputFile := cli.StringP("input-file", "i", "", "Answer one audio file instead of listening")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up", "name", config.AssistantName)

	godotenv.Load(*envFile)
	cfg := config.Load()

	// outbound client for search and speech synthesis
	webClient := &http.Client{Timeout: 20 * time.Second}
	if *proxyAddr != "" {
		var err error
		webClient, err = proxy.NewHTTPClient(*proxyAddr, 20*time.Second)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	textModel := llm.New(cfg.OllamaURL, cfg.TextModel, nil)
	visionModel := llm.New(cfg.OllamaURL, cfg.VisionModel, nil)
	checkModels(textModel, cfg)

	whisper, err := stt.NewTranscriber(cfg.WhisperModel)
	if err != nil {
		log.Error("Failed to init whisper", "err", err)
		os.Exit(1)
	}
	defer whisper.Close()
	log.Debug("Loaded whisper", "model", cfg.WhisperModel)

	player := audio.NewPlayer()

	var ducker *audio.Ducker
	if cfg.Ducking {
		ducker = audio.NewDucker([]string{config.AssistantName}, 20)
	}
	speaker := tts.NewSpeaker(webClient, player, ducker, log.Default())

	camera := vision.NewCamera(cfg.CameraDevice)
	describer := vision.NewDescriber(camera, visionModel, log.Default())

	automation := desktop.New(log.Default(), cfg.ScreenshotDir, cfg.ForceKillAfter)

	state := convo.NewState(cfg.HistoryCap, cfg.VisionTTL)

	rt := &router.Router{
		Text:         textModel,
		Vision:       describer,
		Desktop:      automation,
		Web:          search.NewClient(webClient),
		Wiki:         search.NewWikipedia(webClient),
		State:        state,
		EnableSearch: cfg.EnableWebSearch,
		MaxResults:   cfg.SearchMaxResults,
		Log:          log.Default(),
	}

	a := &assistant.Assistant{
		STT:        whisper,
		TTS:        speaker,
		Cue:        player,
		Router:     rt,
		State:      state,
		Classifier: intent.Classifier{DesktopMatch: desktop.Matches},
		Log:        log.Default(),

		SaveRecordings: cfg.SaveRecordings,
	}

	if cfg.BusURL != "" {
		publisher, err := bus.Connect(cfg.BusURL, log.Default())
		if err != nil {
			log.Warn("Event bus unavailable, continuing without it", "err", err)
		} else {
			defer publisher.Close()
			a.Events = publisher
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *inputFile != "" {
		runFile(ctx, a, *inputFile)
		return
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()
	a.Recorder = rec
	log.Debug("Loaded recorder")

	ctl, err := ipc.StartServer(cfg.SocketPath, a.ControlHandler(), log.Default())
	if err != nil {
		log.Error("Failed to start control socket", "err", err)
		os.Exit(1)
	}
	defer ctl.Close()

	log.Info("Boot up - successful")

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("Session ended with error", "err", err)
		os.Exit(1)
	}
	log.Info("Stopped")
}

// checkModels warns when the configured models are missing from the server.
func checkModels(client *llm.Client, cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := client.Tags(ctx)
	if err != nil {
		log.Warn("Cannot reach completion server, is it running?", "url", cfg.OllamaURL, "err", err)
		return
	}

	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{cfg.TextModel, cfg.VisionModel} {
		if !have[want] {
			log.Warn("Model not available on server", "model", want)
		}
	}
}

func runFile(ctx context.Context, a *assistant.Assistant, path string) {
	samples, err := audioconv.DecodeFile(path)
	if err != nil {
		log.Error("Failed to decode audio file", "path", path, "err", err)
		os.Exit(1)
	}

	reply, err := a.RunFile(ctx, samples)
	if err != nil {
		log.Error("Failed to answer", "err", err)
		os.Exit(1)
	}
	if reply == "" {
		log.Warn("No speech recognized in file", "path", path)
		return
	}
	log.Info("Reply", "text", reply)
}
