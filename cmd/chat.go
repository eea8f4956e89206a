package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prachya/gamesage/internal/config"
	"github.com/prachya/gamesage/internal/gate"
	"github.com/prachya/gamesage/internal/llm"
	"github.com/prachya/gamesage/internal/log"
	"github.com/prachya/gamesage/internal/memory"
	"github.com/prachya/gamesage/internal/refusal"
	"github.com/prachya/gamesage/internal/router"
	"github.com/prachya/gamesage/internal/search"
	"github.com/prachya/gamesage/internal/session"
	"github.com/prachya/gamesage/internal/steam"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive game chat",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// chatEnv bundles what the REPL commands need to mutate.
type chatEnv struct {
	cfg        *config.Config
	logger     log.Logger
	controller *session.Controller
	searcher   *search.Client
	store      *steam.Client
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel)})

	steamClient := steam.NewClient(logger.With("component", "steam"))
	searchClient := search.NewClient(search.Config{
		SerperAPIKey: cfg.SerperAPIKey,
		TavilyAPIKey: cfg.TavilyAPIKey,
		Provider:     cfg.SearchProvider,
		Logger:       logger.With("component", "search"),
	})

	intentRouter, err := router.New(router.Config{
		Store:       steamClient,
		Searcher:    searchClient,
		ResultCount: cfg.SearchResults,
		Logger:      logger.With("component", "router"),
	})
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}

	controllerCfg := session.Config{
		Gate:     gate.New(nil),
		Refusals: refusal.New(nil),
		Router:   intentRouter,
		Store:    memory.NewStore(cfg.MemoryPath, logger.With("component", "memory")),
		Logger:   logger.With("component", "session"),
	}

	if cfg.HasModel() {
		model, err := llm.New(ctx, llm.Config{
			APIKey:      cfg.GeminiAPIKey,
			ModelName:   cfg.ModelName,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Logger:      logger.With("component", "llm"),
		})
		if err != nil {
			return fmt.Errorf("creating model client: %w", err)
		}
		controllerCfg.Model = model
	} else {
		fmt.Fprintln(os.Stderr, "Warning: GAMESAGE_GEMINI_API_KEY not set; answers degrade to pass-through.")
		fmt.Fprintln(os.Stderr, "  export GAMESAGE_GEMINI_API_KEY=your-api-key")
	}

	controller, err := session.NewController(controllerCfg)
	if err != nil {
		return fmt.Errorf("creating session controller: %w", err)
	}

	sess, err := controller.Init(session.NewSession())
	if err != nil {
		return fmt.Errorf("initializing session: %w", err)
	}

	fmt.Printf("🎮 gamesage %s (game chat assistant)\n", Version)
	fmt.Println("Type /help for commands, /exit to quit.")
	fmt.Printf("Session: %s\n\n", sess.ID)

	env := &chatEnv{
		cfg:        cfg,
		logger:     logger,
		controller: controller,
		searcher:   searchClient,
		store:      steamClient,
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("คุณ > ")
		if !scanner.Scan() {
			fmt.Println("\nลาก่อนครับ 👋")
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleCommand(ctx, env, input) {
				break
			}
			continue
		}

		reply, err := env.controller.HandleTurn(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		printReply(reply)
	}

	return scanner.Err()
}

// printReply renders an assistant message, flagging enriched turns.
func printReply(msg memory.Message) {
	if msg.UsedEnrichment {
		fmt.Println("🔍 ใช้ข้อมูลจาก Steam API หรือเว็บ")
	}
	fmt.Printf("gamesage > %s\n\n", msg.Content)
}

// handleCommand executes a slash command. Returns true to exit the
// chat loop.
func handleCommand(ctx context.Context, env *chatEnv, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/exit", "/quit":
		fmt.Println("ลาก่อนครับ 👋")
		return true

	case "/help":
		fmt.Println(`Commands:
  /history          show the conversation so far
  /clear            clear the conversation (keep the memory file)
  /reset            clear the conversation and the memory file
  /provider <name>  switch search provider (serper | tavily | steam)
  /model <name>     switch the inference model
  /top [n]          show Steam top sellers
  /exit             quit`)

	case "/history":
		msgs := env.controller.Messages()
		if len(msgs) == 0 {
			fmt.Println("(empty)")
			break
		}
		for _, m := range msgs {
			marker := ""
			if m.UsedEnrichment {
				marker = " 🔍"
			}
			fmt.Printf("[%s]%s %s\n", m.Role, marker, m.Content)
		}

	case "/clear":
		if err := env.controller.ClearConversation(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		fmt.Println("🗑️ Conversation cleared.")

	case "/reset":
		if err := env.controller.ClearMemory(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		fmt.Println("🧹 Chat memory cleared.")

	case "/provider":
		if len(fields) < 2 {
			fmt.Printf("Current provider: %s\n", env.searcher.Provider())
			break
		}
		if err := env.searcher.SetProvider(fields[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		fmt.Printf("🔍 Search provider: %s\n", fields[1])

	case "/model":
		if len(fields) < 2 {
			fmt.Println("Usage: /model <name>")
			break
		}
		if !env.cfg.HasModel() {
			fmt.Fprintln(os.Stderr, "Error: GAMESAGE_GEMINI_API_KEY not set")
			break
		}
		model, err := llm.New(ctx, llm.Config{
			APIKey:      env.cfg.GeminiAPIKey,
			ModelName:   fields[1],
			Temperature: env.cfg.Temperature,
			MaxTokens:   env.cfg.MaxTokens,
			Logger:      env.logger.With("component", "llm"),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		env.controller.SetModel(model)
		fmt.Printf("🧠 Model: %s\n", model.Model())

	case "/top":
		count := 10
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				count = n
			}
		}
		games, err := env.store.TopSellers(ctx, count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		if len(games) == 0 {
			fmt.Println("(no data)")
			break
		}
		fmt.Println("🏆 Steam Top Sellers:")
		for i, g := range games {
			fmt.Printf("%2d. %s (https://store.steampowered.com/app/%d)\n", i+1, g.Name, g.AppID)
		}

	default:
		fmt.Printf("Unknown command %q, try /help\n", fields[0])
	}
	return false
}
