// Package setup implements the interactive linenotify setup wizard.
package setup

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Fullex26/linenotify/internal/config"
)

// defaultConfigTemplate is written when no config file exists yet.
const defaultConfigTemplate = `# linenotify configuration

# ── LINE Notify ──
line:
  token: "${LINE_NOTIFY_TOKEN}"
  endpoint: "https://notify-api.line.me/api/notify"
  timeout: "10s"

# ── Delivery history ──
history:
  enabled: true
  path: "/var/lib/linenotify/history.db"
  retention_days: 30
`

// isTerminal is swapped out in tests so prompts never block on a real TTY.
var isTerminal = term.IsTerminal

// answers holds what the user chose during the wizard.
type answers struct {
	token         string
	history       bool
	retentionDays int
}

// Run is the entry point for the interactive setup wizard.
func Run(configPath, envPath string) error {
	fmt.Println()
	fmt.Println("🔔 linenotify setup")
	fmt.Println("───────────────────")
	fmt.Println()

	if err := ensureConfig(configPath); err != nil {
		return err
	}

	r := bufio.NewReader(os.Stdin)

	a, err := collectAnswers(r)
	if err != nil {
		return err
	}

	// ── Write env file ───────────────────────────────────────────
	if err := writeEnvFile(envPath, map[string]string{config.TokenEnv: a.token}); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	// Set in current process so the test subprocess inherits it.
	_ = os.Setenv(config.TokenEnv, a.token)
	fmt.Printf("  ✅ Token saved to %s\n", envPath)

	// ── Update config ─────────────────────────────────────────────
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	updated := applyAnswers(string(configData), a)
	if err := os.WriteFile(configPath, []byte(updated), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("  ✅ Config updated: %s\n", configPath)
	fmt.Println()

	// ── Test notification ─────────────────────────────────────────
	fmt.Print("  Send a test notification? [Y/n]: ")
	if readBool(r, true) {
		fmt.Print("  Sending... ")
		if err := runTest(configPath, envPath); err != nil {
			fmt.Printf("\n  ⚠️  Test failed: %v\n", err)
			fmt.Println("  Check your token, then retry: linenotify test")
		} else {
			fmt.Println("✅")
		}
	}

	fmt.Println()
	fmt.Println("✅ Setup complete!")
	fmt.Println("   Try: linenotify send -m \"hello\"")
	fmt.Println()
	return nil
}

// ensureConfig creates the config file from the default template if absent.
func ensureConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0600); err != nil {
		return fmt.Errorf("creating default config: %w", err)
	}
	fmt.Printf("  Created default config: %s\n\n", path)
	return nil
}

// collectAnswers prompts for the token and history settings.
func collectAnswers(r *bufio.Reader) (answers, error) {
	a := answers{history: true, retentionDays: 30}

	fmt.Println("  LINE Notify")
	fmt.Println("  ──────────────────────────────────────────────────────────")
	fmt.Println("  1. Log in at https://notify-bot.line.me/my/")
	fmt.Println("  2. Generate token → pick a chat → copy the token")
	fmt.Println()

	token, err := readMasked(r, "  Access token: ")
	if err != nil {
		return a, err
	}
	a.token = strings.TrimSpace(token)
	if a.token == "" {
		return a, fmt.Errorf("an access token is required")
	}
	fmt.Println()

	fmt.Print("  Keep a local history of deliveries? [Y/n]: ")
	a.history = readBool(r, true)

	if a.history {
		fmt.Print("  Keep history for how many days? (0 = forever) [30]: ")
		if v := strings.TrimSpace(readLine(r)); v != "" {
			days, err := strconv.Atoi(v)
			if err != nil || days < 0 {
				return a, fmt.Errorf("invalid retention %q: must be a whole number of days", v)
			}
			a.retentionDays = days
		}
	}

	fmt.Println()
	return a, nil
}

// applyAnswers updates the config YAML with the chosen history settings.
// The token itself stays in the env file.
func applyAnswers(cfg string, a answers) string {
	if !a.history {
		cfg = setInBlock(cfg, "history", "  enabled: true", "  enabled: false")
	}
	if a.retentionDays != 30 {
		cfg = setInBlock(cfg, "history", "  retention_days: 30", fmt.Sprintf("  retention_days: %d", a.retentionDays))
	}
	return cfg
}

// setInBlock replaces old with replacement within the top-level YAML block
// that begins with "{key}:\n". The block ends at the first non-empty line
// that is not indented.
func setInBlock(cfg, key, old, replacement string) string {
	marker := key + ":\n"
	idx := strings.Index(cfg, marker)
	for idx > 0 && cfg[idx-1] != '\n' {
		next := strings.Index(cfg[idx+1:], marker)
		if next == -1 {
			return cfg
		}
		idx += next + 1
	}
	if idx == -1 {
		return cfg
	}

	after := cfg[idx+len(marker):]

	// Walk lines to find the end of this block.
	end := len(after)
	pos := 0
	for pos < len(after) {
		nl := strings.IndexByte(after[pos:], '\n')
		if nl == -1 {
			break
		}
		line := after[pos : pos+nl]
		if len(line) > 0 && !strings.HasPrefix(line, "  ") {
			end = pos
			break
		}
		pos += nl + 1
	}

	block := strings.Replace(after[:end], old, replacement, 1)
	return cfg[:idx+len(marker)] + block + after[end:]
}

// writeEnvFile writes KEY=value pairs to path (one per line, sorted, mode 0600).
func writeEnvFile(path string, vars map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(vars[k])
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0600)
}

// runTest invokes the current binary's "test" subcommand to verify the token.
func runTest(configPath, envPath string) error {
	self, err := os.Executable()
	if err != nil {
		self = "linenotify"
	}
	cmd := exec.Command(self, "--config", configPath, "--env-file", envPath, "test")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// readLine reads one line from r, stripping the trailing newline.
func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// readMasked reads a secret without echoing characters when stdin is a TTY.
// Falls back to plain line reading for non-interactive contexts (pipes, CI).
func readMasked(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if isTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	}
	return readLine(r), nil
}

// readBool parses a y/n response; returns defaultVal on empty input.
func readBool(r *bufio.Reader, defaultVal bool) bool {
	line := strings.ToLower(strings.TrimSpace(readLine(r)))
	if line == "" {
		return defaultVal
	}
	return line == "y" || line == "yes"
}
