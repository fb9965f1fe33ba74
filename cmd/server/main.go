package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/rashedq/shahid/internal/ai"
	"github.com/rashedq/shahid/internal/ai/ollama"
	"github.com/rashedq/shahid/internal/ai/openai"
	"github.com/rashedq/shahid/internal/config"
	"github.com/rashedq/shahid/internal/game"
	"github.com/rashedq/shahid/internal/stats"
	"github.com/rashedq/shahid/internal/ws"
	staticserver "github.com/rashedq/shahid/static"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Shahid - Real-time social deduction party game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT              Port to listen on (default: 8080)
  STATS_FILE        Player statistics JSON file (default: ./shahid-stats.json)
  SCENARIOS_FILE    Optional JSON file overriding the built-in scenarios
  EXPORT_ENABLED    Append round results to a text file (default: false)
  EXPORT_FILE       Path for round exports (default: ./shahid-results.txt)
  DRAFT_SECONDS     Drafting countdown length (default: 90)
  ROUNDS            Rounds per standard match (default: 3)
  BOT_PROVIDER      LLM for bot alibis: "openai" or "ollama" (default: off)
  BOT_MODEL         Model name for the bot provider
  OPENAI_API_KEY    OpenAI API key (openai provider)
  OLLAMA_HOST       Ollama host URL (default: http://localhost:11434)

Visit http://localhost:8080 after starting the server.
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Shahid %s\n", version)
		return
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()

	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		zerologlog.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	scenarios := game.DefaultScenarios()
	if cfg.ScenariosFile != "" {
		loaded, err := game.LoadScenarios(cfg.ScenariosFile)
		if err != nil {
			log.Fatal(err)
		}
		scenarios = loaded
		zerologlog.Info().Str("file", cfg.ScenariosFile).Int("count", scenarios.Len()).Msg("loaded scenarios")
	}

	store, err := stats.NewStore(cfg.StatsFile)
	if err != nil {
		log.Fatal(err)
	}

	sock := ws.New()
	settings := game.DefaultSettings()
	settings.DraftSeconds = cfg.DraftSeconds
	settings.StandardRounds = cfg.StandardRounds
	settings.ExportEnabled = cfg.ExportEnabled
	settings.ExportFile = cfg.ExportFile
	reg := game.NewRegistry(sock, scenarios, settings)
	reg.SetStats(store)

	var prov ai.Provider
	switch cfg.BotProvider {
	case "openai":
		prov = openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	case "ollama":
		prov = ollama.New(cfg.OllamaHost)
	}
	if prov != nil {
		reg.SetBotProvider(prov, cfg.BotModel)
		zerologlog.Info().Str("provider", cfg.BotProvider).Str("model", cfg.BotModel).Msg("bot answer provider enabled")
	}

	sock.SetRegistry(reg)
	io := sock.Mount(r)
	defer io.Close()

	// lobby discovery and persistent leaderboard
	r.GET("/api/rooms/:code", func(c *gin.Context) {
		info, err := reg.Info(c.Param("code"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room_not_found"})
			return
		}
		c.JSON(http.StatusOK, info)
	})
	r.GET("/api/leaderboard", func(c *gin.Context) {
		lb, err := store.Leaderboard()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard_unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": lb})
	})

	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
