// Twin daemon - digital twin API service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/twinlabs/twin/internal/api"
	"github.com/twinlabs/twin/internal/availability"
	"github.com/twinlabs/twin/internal/calendar"
	"github.com/twinlabs/twin/internal/config"
	"github.com/twinlabs/twin/internal/embeddings"
	"github.com/twinlabs/twin/internal/llm"
	"github.com/twinlabs/twin/internal/logging"
	"github.com/twinlabs/twin/internal/retrieval"
	"github.com/twinlabs/twin/internal/storage"
	"github.com/twinlabs/twin/internal/twin"
	"github.com/twinlabs/twin/internal/vectorstore"
)

var (
	configPath string
	port       int
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "twin",
		Short: "Digital twin API - answers questions as you, grounded in your profile and calendar",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if verbose {
		logging.SetLevel(logging.DEBUG)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	loc, err := time.LoadLocation(cfg.Persona.Timezone)
	if err != nil {
		return fmt.Errorf("invalid persona timezone %q: %w", cfg.Persona.Timezone, err)
	}

	// Database (tokens + ingest manifest)
	db, err := storage.Open(storage.Config{Path: filepath.Join(cfg.DataDir, "twin.db")})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Vector store
	vectorStore, err := vectorstore.NewStore(vectorstore.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer vectorStore.Close()

	// OpenAI clients
	embedder := embeddings.NewService(embeddings.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.EmbedModel,
	})
	llmClient := llm.NewClient(llm.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.ChatModel,
	})
	if !llmClient.IsConfigured() {
		logging.Warn("OPENAI_API_KEY not set - chat will fail until configured")
	}

	if err := vectorStore.EnsureCollection(context.Background(), embedder.Dimension()); err != nil {
		logging.WithField("error", err).Warn("could not ensure Qdrant collection; retrieval may fail")
	}

	// Google Calendar
	oauthClient := calendar.NewOAuthClient(calendar.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes:       calendar.DefaultOAuthConfig().Scopes,
	})
	tokens := storage.NewTokenStore(db)
	provider := calendar.NewProvider(oauthClient, tokens, loc)
	if !calendar.IsConfigured() {
		logging.Warn("Google OAuth not configured - availability will report unknown")
	}

	// Engines
	statusEngine := availability.NewEngine(provider, loc)
	index := retrieval.NewIndex(vectorStore, embedder)
	engine := twin.New(index, statusEngine, llmClient, twin.Config{
		PersonaName: cfg.Persona.Name,
	})

	server := api.New(api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Asker:          engine,
		Status:         statusEngine,
		Auth:           provider,
		OAuth:          oauthClient,
		Tokens:         tokens,
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logging.Info("shutting down")
		server.Stop(context.Background())
	}()

	logging.WithField("persona", cfg.Persona.Name).Info("twin ready")
	return server.Start()
}
