// Package desktop executes local machine commands: launching and closing
// applications, opening websites, screenshots, system info and volume.
package desktop

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/distatus/battery"
	"github.com/kbinani/screenshot"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"log/slog"
)

// launch commands per application name
var apps = map[string]string{
	"firefox":     "firefox",
	"chrome":      "google-chrome",
	"chromium":    "chromium-browser",
	"terminal":    "gnome-terminal",
	"files":       "nautilus",
	"calculator":  "gnome-calculator",
	"text editor": "gedit",
	"code":        "code",
	"settings":    "gnome-control-center",
}

var websites = map[string]string{
	"youtube":  "youtube.com",
	"google":   "google.com",
	"gmail":    "gmail.com",
	"facebook": "facebook.com",
	"twitter":  "twitter.com",
	"github":   "github.com",
}

// process names matched when closing
var procNames = map[string]string{
	"terminal":    "gnome-terminal",
	"firefox":     "firefox",
	"chrome":      "chrome",
	"files":       "nautilus",
	"calculator":  "gnome-calculator",
	"text editor": "gedit",
	"code":        "code",
}

// Hindi and Gujarati application names mapped to the canonical keys above.
var appAliases = map[string]string{
	"टर्मिनल":    "terminal",
	"ટર્મિનલ":    "terminal",
	"कैलकुलेटर":  "calculator",
	"કેલ્ક્યુલેટર": "calculator",
	"ब्राउज़र":   "firefox",
	"બ્રાઉઝર":    "firefox",
	"फाइल":       "files",
	"ફાઇલ":       "files",
}

var openVerbs = []string{"open", "launch", "start", "run", "खोलो", "चालू करो", "ખોલો", "ચાલુ કરો"}
var closeVerbs = []string{"close", "quit", "exit", "kill", "stop", "बंद करो", "બંધ કરો"}

var websiteIndicators = []string{"website", ".com", "browse", "visit", "go to"}
var screenshotWords = []string{"screenshot", "स्क्रीनशॉट", "સ્ક્રીનશોટ"}
var sysinfoWords = []string{"battery", "system", "बैटरी", "બેટરી"}

var domainPattern = regexp.MustCompile(`([a-zA-Z0-9-]+\.(com|org|net|io))`)

// Automation executes desktop commands. The zero value is not usable, use
// New.
type Automation struct {
	log            *slog.Logger
	screenshotDir  string
	forceKillAfter time.Duration // 0 means terminate only, never SIGKILL
}

func New(log *slog.Logger, screenshotDir string, forceKillAfter time.Duration) *Automation {
	if log == nil {
		log = slog.Default()
	}
	return &Automation{
		log:            log,
		screenshotDir:  screenshotDir,
		forceKillAfter: forceKillAfter,
	}
}

func normalize(command string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(command)), ".!?,।")
}

// canonicalApp resolves an application named anywhere in the command,
// including localized aliases, to its canonical key.
func canonicalApp(cmd string) string {
	for name := range apps {
		if strings.Contains(cmd, name) {
			return name
		}
	}
	for alias, name := range appAliases {
		if strings.Contains(cmd, alias) {
			return name
		}
	}
	return ""
}

func hasWebsite(cmd string) bool {
	for name := range websites {
		if strings.Contains(cmd, name) {
			return true
		}
	}
	return containsAny(cmd, websiteIndicators)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Matches reports whether the command is a desktop operation. Open and close
// requests only match when they name a recognized application, so a bare
// "stop" or "बंद करो" stays available as a session exit.
func Matches(command string) bool {
	cmd := normalize(command)

	if hasWebsite(cmd) {
		return true
	}
	if containsAny(cmd, openVerbs) && canonicalApp(cmd) != "" {
		return true
	}
	if containsAny(cmd, closeVerbs) && canonicalApp(cmd) != "" {
		return true
	}
	if containsAny(cmd, screenshotWords) {
		return true
	}
	if containsAny(cmd, sysinfoWords) {
		return true
	}
	if strings.Contains(cmd, "volume") || strings.Contains(cmd, "आवाज़") {
		return true
	}
	return false
}

// Execute runs the command and returns the spoken confirmation. ok is false
// when the command turned out not to be a desktop operation after all, in
// which case the caller should fall through to chat.
func (a *Automation) Execute(ctx context.Context, command, lang string) (reply string, ok bool) {
	cmd := normalize(command)

	switch {
	case hasWebsite(cmd):
		return a.openWebsite(cmd, lang), true
	case containsAny(cmd, openVerbs) && canonicalApp(cmd) != "":
		return a.openApp(cmd, lang), true
	case containsAny(cmd, closeVerbs) && canonicalApp(cmd) != "":
		return a.closeApp(ctx, cmd, lang), true
	case containsAny(cmd, screenshotWords):
		return a.screenshot(lang), true
	case containsAny(cmd, sysinfoWords):
		return a.systemInfo(ctx, lang), true
	case strings.Contains(cmd, "volume") || strings.Contains(cmd, "आवाज़"):
		return a.volume(cmd, lang), true
	default:
		return "", false
	}
}

func (a *Automation) openWebsite(cmd, lang string) string {
	var site string
	for name, url := range websites {
		if strings.Contains(cmd, name) {
			site = url
			break
		}
	}
	if site == "" {
		site = domainPattern.FindString(cmd)
	}
	if site == "" {
		return "I couldn't find which website to open"
	}
	if !strings.HasPrefix(site, "http") {
		site = "https://" + site
	}

	var launch *exec.Cmd
	switch {
	case strings.Contains(cmd, "firefox"):
		launch = exec.Command(apps["firefox"], site)
	case strings.Contains(cmd, "chrome"):
		launch = exec.Command(apps["chrome"], site)
	default:
		launch = exec.Command("xdg-open", site)
	}

	if err := launch.Start(); err != nil {
		a.log.Error("failed to open website", "site", site, "error", err)
		return "Could not open " + site
	}
	a.log.Info("opened website", "site", site)

	switch lang {
	case "hi":
		return site + " खोल रहा हूं"
	case "gu":
		return site + " ખોલી રહ્યો છું"
	default:
		return "Opening " + site
	}
}

func (a *Automation) openApp(cmd, lang string) string {
	app := canonicalApp(cmd)
	if app == "" {
		return "I couldn't find which application to open"
	}

	if err := exec.Command(apps[app]).Start(); err != nil {
		a.log.Error("failed to open application", "app", app, "error", err)
		return "Could not open " + app
	}
	a.log.Info("opened application", "app", app)

	switch lang {
	case "hi":
		return app + " खोल दिया"
	case "gu":
		return app + " ખોલ્યું"
	default:
		return "Opening " + app
	}
}

func (a *Automation) closeApp(ctx context.Context, cmd, lang string) string {
	app := canonicalApp(cmd)
	procName, known := procNames[app]
	if !known {
		return "I couldn't find which application to close"
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		a.log.Error("failed to list processes", "error", err)
		return "Could not close " + app
	}

	var terminated []*process.Process
	for _, p := range procs {
		if !matchesProcess(ctx, p, procName) {
			continue
		}
		if err := p.TerminateWithContext(ctx); err != nil {
			continue
		}
		terminated = append(terminated, p)
	}

	if len(terminated) == 0 {
		switch lang {
		case "hi":
			return app + " चालू नहीं है"
		case "gu":
			return app + " ચાલુ નથી"
		default:
			return app + " is not running"
		}
	}

	if a.forceKillAfter > 0 {
		a.forceKill(ctx, terminated)
	}

	a.log.Info("closed application", "app", app, "processes", len(terminated))
	switch lang {
	case "hi":
		return app + " बंद कर दिया"
	case "gu":
		return app + " બંધ કર્યું"
	default:
		return "Closed " + app
	}
}

func matchesProcess(ctx context.Context, p *process.Process, procName string) bool {
	if name, err := p.NameWithContext(ctx); err == nil && strings.Contains(strings.ToLower(name), procName) {
		return true
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil && strings.Contains(strings.ToLower(cmdline), procName) {
		return true
	}
	return false
}

// forceKill escalates to SIGKILL for processes that ignored the terminate.
func (a *Automation) forceKill(ctx context.Context, procs []*process.Process) {
	select {
	case <-time.After(a.forceKillAfter):
	case <-ctx.Done():
		return
	}
	for _, p := range procs {
		running, err := p.IsRunningWithContext(ctx)
		if err != nil || !running {
			continue
		}
		if err := p.KillWithContext(ctx); err == nil {
			a.log.Warn("force killed process", "pid", p.Pid)
		}
	}
}

func (a *Automation) screenshot(lang string) string {
	if screenshot.NumActiveDisplays() == 0 {
		a.log.Error("no active display for screenshot")
		return "Could not take screenshot"
	}

	img, err := screenshot.CaptureDisplay(0)
	if err != nil {
		a.log.Error("screenshot capture failed", "error", err)
		return "Could not take screenshot"
	}

	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	path := filepath.Join(a.screenshotDir, name)

	f, err := os.Create(path)
	if err != nil {
		a.log.Error("screenshot save failed", "path", path, "error", err)
		return "Could not take screenshot"
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		a.log.Error("screenshot encode failed", "error", err)
		return "Could not take screenshot"
	}
	a.log.Info("screenshot saved", "path", path)

	switch lang {
	case "hi":
		return "स्क्रीनशॉट यहाँ सहेजा: " + path
	case "gu":
		return "સ્ક્રીનશોટ અહીં સાચવ્યો: " + path
	default:
		return "Screenshot saved to " + path
	}
}

func (a *Automation) systemInfo(ctx context.Context, lang string) string {
	percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
	if err != nil || len(percents) == 0 {
		a.log.Error("cpu usage unavailable", "error", err)
		return "Could not get system info"
	}
	cpuPct := percents[0]

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		a.log.Error("memory usage unavailable", "error", err)
		return "Could not get system info"
	}

	batteryInfo := "N/A"
	if batteries, err := battery.GetAll(); err == nil && len(batteries) > 0 {
		b := batteries[0]
		pct := 0.0
		if b.Full > 0 {
			pct = b.Current / b.Full * 100
		}
		state := "on battery"
		if strings.EqualFold(b.State.String(), "charging") {
			state = "charging"
		}
		batteryInfo = fmt.Sprintf("%.0f%% (%s)", pct, state)
	}

	switch lang {
	case "hi":
		return fmt.Sprintf("CPU: %.1f%%\nमेमोरी: %.1f%%\nबैटरी: %s", cpuPct, vm.UsedPercent, batteryInfo)
	case "gu":
		return fmt.Sprintf("CPU: %.1f%%\nમેમરી: %.1f%%\nબેટરી: %s", cpuPct, vm.UsedPercent, batteryInfo)
	default:
		return fmt.Sprintf("CPU: %.1f%%\nMemory: %.1f%%\nBattery: %s", cpuPct, vm.UsedPercent, batteryInfo)
	}
}

func (a *Automation) volume(cmd, lang string) string {
	run := func(arg string) error {
		return exec.Command("amixer", "set", "Master", arg).Run()
	}

	switch {
	case strings.Contains(cmd, "up") || strings.Contains(cmd, "increase") || strings.Contains(cmd, "बढ़ा"):
		if err := run("5%+"); err != nil {
			a.log.Error("volume change failed", "error", err)
			break
		}
		if lang == "en" {
			return "Volume increased"
		}
		return "आवाज़ बढ़ा दी"
	case strings.Contains(cmd, "down") || strings.Contains(cmd, "decrease") || strings.Contains(cmd, "कम"):
		if err := run("5%-"); err != nil {
			a.log.Error("volume change failed", "error", err)
			break
		}
		if lang == "en" {
			return "Volume decreased"
		}
		return "आवाज़ कम कर दी"
	case strings.Contains(cmd, "mute"):
		if err := run("toggle"); err != nil {
			a.log.Error("volume change failed", "error", err)
			break
		}
		if lang == "en" {
			return "Volume muted"
		}
		return "आवाज़ बंद कर दी"
	}
	return "Volume command not recognized"
}
