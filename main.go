package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docmind/rag-assistant/api"
	"github.com/docmind/rag-assistant/chunker"
	"github.com/docmind/rag-assistant/config"
	"github.com/docmind/rag-assistant/database"
	"github.com/docmind/rag-assistant/embeddings"
	"github.com/docmind/rag-assistant/events"
	"github.com/docmind/rag-assistant/ingestion"
	"github.com/docmind/rag-assistant/llm"
	"github.com/docmind/rag-assistant/rag"
	"github.com/docmind/rag-assistant/session"
	"github.com/docmind/rag-assistant/store"
)

func main() {
	godotenv.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "ask":
		askCmd(cfg, logger, os.Args[2:])
	case "reset":
		resetCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// stack holds the dependency objects shared by every command. Everything is
// constructed exactly once per process and handed to the pipelines by
// reference.
type stack struct {
	store    *store.PostgresStore
	rag      *rag.Service
	ingest   *ingestion.Service
	sessions *session.Manager
	logs     *events.Reader
	close    func()
}

func buildStack(ctx context.Context, cfg config.Config, logger *log.Logger, needLLM bool) (*stack, error) {
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connection: %w", err)
	}

	if err := database.EnsureSchema(ctx, pool, cfg.Embeddings.Dimension); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("embedder setup: %w", err)
	}

	storeLog, err := events.NewLogger(cfg.LogsDir, "vectordb", cfg.UTCOffsetMinutes)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("vectordb logger: %w", err)
	}
	engineLog, err := events.NewLogger(cfg.LogsDir, "rag_engine", cfg.UTCOffsetMinutes)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("rag_engine logger: %w", err)
	}
	sessionLog, err := events.NewLogger(cfg.LogsDir, "session_manager", cfg.UTCOffsetMinutes)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("session_manager logger: %w", err)
	}

	splitter := chunker.NewSplitter(chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
	vectorStore := store.NewPostgresStore(pool, embedder, splitter, storeLog)

	var llmClient llm.Client
	if needLLM {
		llmClient, err = llm.NewClient(cfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("llm setup: %w", err)
		}
	}

	return &stack{
		store:    vectorStore,
		rag:      rag.NewService(vectorStore, llmClient, engineLog),
		ingest:   ingestion.NewService(vectorStore, cfg.KnowledgeBaseDir, logger, engineLog),
		sessions: session.NewManager(sessionLog),
		logs:     events.NewReader(cfg.LogsDir),
		close:    pool.Close,
	}, nil
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.HTTPAddr, "address for the HTTP server to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := buildStack(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	defer deps.close()

	server := api.New(deps.rag, deps.ingest, deps.store, deps.sessions, deps.logs, logger)
	httpServer := &http.Server{Addr: *addr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	logger.Printf("rag-assistant listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http server: %v", err)
	}
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	dir := flags.String("dir", cfg.KnowledgeBaseDir, "path to the raw knowledge base directory")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}
	cfg.KnowledgeBaseDir = *dir

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := buildStack(ctx, cfg, logger, false)
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	defer deps.close()

	logger.Printf("ingesting documents from %s using %s/%s embeddings",
		cfg.KnowledgeBaseDir, strings.ToUpper(cfg.Embeddings.Provider), cfg.Embeddings.Model)

	stats, err := deps.ingest.Ingest(ctx)
	if err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}

	logger.Printf("ingested %d documents (%d new chunks)", stats.Documents, stats.Chunks)
}

func askCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ask", flag.ExitOnError)
	question := flags.String("question", "", "question to ask the assistant")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ask flags: %v", err)
	}

	if strings.TrimSpace(*question) == "" {
		fmt.Print("Enter your question: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*question = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatalf("read question: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := buildStack(ctx, cfg, logger, true)
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	defer deps.close()

	sessionID := deps.sessions.SessionID("", true)

	if rag.IsGreeting(*question) {
		fmt.Println(rag.GreetingResponse())
		return
	}

	result, err := deps.rag.Query(ctx, *question, sessionID)
	if err != nil {
		logger.Fatalf("query failed: %v", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, source := range result.Sources {
			fmt.Printf("  - %s\n", source)
		}
	}
}

func resetCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("reset", flag.ExitOnError)
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse reset flags: %v", err)
	}

	if !*confirmed {
		fmt.Print("This will permanently delete all indexed chunks. Continue? [y/N]: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatalf("read confirmation: %v", err)
			}
			logger.Println("reset aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Println("reset aborted")
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := buildStack(ctx, cfg, logger, false)
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	defer deps.close()

	if err := deps.store.Reset(ctx); err != nil {
		logger.Fatalf("reset failed: %v", err)
	}

	logger.Println("vector store cleared")
}

func printUsage() {
	fmt.Println("Usage: rag-assistant <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the HTTP API server")
	fmt.Println("  ingest   Index the raw knowledge base into the vector store")
	fmt.Println("  ask      Ask a one-shot question against the indexed corpus")
	fmt.Println("  reset    Remove all indexed chunks from the vector store")
}
