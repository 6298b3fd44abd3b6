// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ColorPair is a light/dark shade assigned to a player for UI theming.
// Pairs are assigned by join order and cycle when the roster outgrows the list.
type ColorPair struct {
	Light string `json:"light"`
	Dark  string `json:"dark"`
}

// DefaultPlayerColors mirrors the stock palette: one hue per player.
var DefaultPlayerColors = []ColorPair{
	{Light: "#FF6B6B", Dark: "#C92A2A"}, // red
	{Light: "#4DABF7", Dark: "#1864AB"}, // blue
	{Light: "#51CF66", Dark: "#046113"}, // green
	{Light: "#FFD43B", Dark: "#F08C00"}, // yellow
	{Light: "#FF9F40", Dark: "#E67700"}, // orange
	{Light: "#FF6BFF", Dark: "#C92AC9"}, // magenta
	{Light: "#FFA07A", Dark: "#FF4F00"}, // salmon
	{Light: "#66D9E8", Dark: "#0B7285"}, // cyan
}

// Config holds every tunable the game server recognizes. Values come from the
// environment (godotenv autoload in main) with sensible defaults for a LAN party.
type Config struct {
	DrawingTime       time.Duration
	GuessingTime      time.Duration
	VotingTime        time.Duration
	TitleCardDuration time.Duration

	MinPlayers int
	MaxPlayers int
	NumRounds  int

	PlayerColors []ColorPair

	UnusedPromptsFile string
	UsedPromptsFile   string
	// PromptRecycle controls what happens when the unused pool runs dry
	// mid-game: recycle the used pool (true) or end the game early (false).
	PromptRecycle bool

	Port string
}

// Load reads the configuration from the environment, falling back to defaults.
// It returns an error only for values that parse but are nonsensical
// (e.g. MIN_PLAYERS > MAX_PLAYERS), so a blank environment always works.
func Load() (*Config, error) {
	cfg := &Config{
		DrawingTime:       envSeconds("DRAWING_TIME", 10*time.Second),
		GuessingTime:      envSeconds("GUESSING_TIME", 10*time.Second),
		VotingTime:        envSeconds("VOTING_TIME", 15*time.Second),
		TitleCardDuration: envSeconds("TITLE_CARD_DURATION", 1*time.Second),
		MinPlayers:        envInt("MIN_PLAYERS", 3),
		MaxPlayers:        envInt("MAX_PLAYERS", 80),
		NumRounds:         envInt("NUM_ROUNDS", 1),
		PlayerColors:      envColors("PLAYER_COLORS", DefaultPlayerColors),
		UnusedPromptsFile: envString("UNUSED_PROMPTS_FILE", "unused_prompts.txt"),
		UsedPromptsFile:   envString("USED_PROMPTS_FILE", "used_prompts.txt"),
		PromptRecycle:     envBool("PROMPT_RECYCLE", true),
		Port:              envString("SKETCHPARTY_SERVICE_PORT", "5001"),
	}

	if cfg.MinPlayers < 2 {
		return nil, fmt.Errorf("MIN_PLAYERS must be at least 2, got %d", cfg.MinPlayers)
	}
	if cfg.MaxPlayers < cfg.MinPlayers {
		return nil, fmt.Errorf("MAX_PLAYERS (%d) must be >= MIN_PLAYERS (%d)", cfg.MaxPlayers, cfg.MinPlayers)
	}
	if cfg.NumRounds < 1 {
		return nil, fmt.Errorf("NUM_ROUNDS must be at least 1, got %d", cfg.NumRounds)
	}
	if len(cfg.PlayerColors) == 0 {
		return nil, fmt.Errorf("PLAYER_COLORS must not be empty")
	}
	return cfg, nil
}

// ColorForJoinOrder returns the pair for the nth player to join, cycling.
func (c *Config) ColorForJoinOrder(n int) ColorPair {
	return c.PlayerColors[n%len(c.PlayerColors)]
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
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

func envSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func envBool(key string, def bool) bool {
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

// envColors parses a palette of the form "#light:#dark,#light:#dark,...".
// Malformed entries fall back to the default palette wholesale; a half-broken
// palette is worse than the stock one.
func envColors(key string, def []ColorPair) []ColorPair {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var colors []ColorPair
	for _, pair := range strings.Split(v, ",") {
		parts := strings.Split(strings.TrimSpace(pair), ":")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return def
		}
		colors = append(colors, ColorPair{Light: parts[0], Dark: parts[1]})
	}
	return colors
}
