package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Assistant identity, one name per supported language.
const (
	AssistantName   = "Vani"
	AssistantNameHI = "वाणी"
	AssistantNameGU = "વાણી"
)

type Config struct {
	OllamaURL   string
	TextModel   string
	VisionModel string

	WhisperModel string

	HistoryCap int
	VisionTTL  time.Duration

	EnableWebSearch  bool
	SearchMaxResults int

	CameraDevice  int
	ScreenshotDir string

	// Directory for wav dumps of recorded utterances. Empty disables.
	SaveRecordings string

	// Second forced-termination pass for close commands. Zero disables.
	ForceKillAfter time.Duration

	// Lower other applications' audio streams while speaking.
	Ducking bool

	BusURL     string
	SocketPath string
}

func Load() Config {
	home, _ := os.UserHomeDir()

	return Config{
		OllamaURL:   getenv("VANI_OLLAMA_URL", "http://localhost:11434"),
		TextModel:   getenv("VANI_TEXT_MODEL", "llama3.2:3b"),
		VisionModel: getenv("VANI_VISION_MODEL", "moondream"),

		WhisperModel: getenv("VANI_WHISPER_MODEL", "third_party/whisper.cpp/models/ggml-medium.bin"),

		HistoryCap: getint("VANI_HISTORY_CAP", 20),
		VisionTTL:  getdur("VANI_VISION_TTL", 60*time.Second),

		EnableWebSearch:  getbool("VANI_WEB_SEARCH", true),
		SearchMaxResults: getint("VANI_SEARCH_MAX_RESULTS", 5),

		CameraDevice:  getint("VANI_CAMERA_DEVICE", 0),
		ScreenshotDir: getenv("VANI_SCREENSHOT_DIR", filepath.Join(home, "Pictures")),

		SaveRecordings: os.Getenv("VANI_SAVE_RECORDINGS"),

		ForceKillAfter: getdur("VANI_FORCE_KILL", 0),
		Ducking:        getbool("VANI_DUCKING", false),

		BusURL:     os.Getenv("VANI_BUS_URL"),
		SocketPath: getenv("VANI_SOCKET", "/tmp/vani.sock"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
