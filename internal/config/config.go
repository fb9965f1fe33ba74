package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port string

	StatsFile     string
	ScenariosFile string

	ExportEnabled bool
	ExportFile    string

	DraftSeconds   int
	StandardRounds int

	// optional LLM provider for bot-written alibis
	BotProvider   string // "openai" | "ollama" | ""
	BotModel      string
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaHost    string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.StatsFile = getenv("STATS_FILE", "./shahid-stats.json")
	c.ScenariosFile = os.Getenv("SCENARIOS_FILE")
	c.ExportEnabled = getenv("EXPORT_ENABLED", "false") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./shahid-results.txt")
	c.DraftSeconds = getint("DRAFT_SECONDS", 90)
	c.StandardRounds = getint("ROUNDS", 3)
	c.BotProvider = os.Getenv("BOT_PROVIDER")
	c.BotModel = getenv("BOT_MODEL", "gpt-3.5-turbo")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
