// Ingest CLI - loads profile documents and slide decks into the vector index
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twinlabs/twin/internal/calendar"
	"github.com/twinlabs/twin/internal/config"
	"github.com/twinlabs/twin/internal/embeddings"
	"github.com/twinlabs/twin/internal/ingest"
	"github.com/twinlabs/twin/internal/logging"
	"github.com/twinlabs/twin/internal/retrieval"
	"github.com/twinlabs/twin/internal/slides"
	"github.com/twinlabs/twin/internal/storage"
	"github.com/twinlabs/twin/internal/vectorstore"
)

var (
	configPath    string
	profileDir    string
	includeSlides bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest profile documents (and optionally Google Slides) into the twin's index",
		RunE:  runIngest,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.Flags().StringVar(&profileDir, "profile-dir", "", "Profile markdown directory (overrides config)")
	rootCmd.Flags().BoolVar(&includeSlides, "slides", false, "Also ingest Google Slides from the configured Drive folder")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if profileDir == "" {
		profileDir = cfg.Persona.ProfileDir
	}

	db, err := storage.Open(storage.Config{Path: filepath.Join(cfg.DataDir, "twin.db")})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	vectorStore, err := vectorstore.NewStore(vectorstore.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	defer vectorStore.Close()

	embedder := embeddings.NewService(embeddings.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.EmbedModel,
	})
	if !embedder.IsConfigured() {
		return fmt.Errorf("OPENAI_API_KEY not set")
	}

	if err := vectorStore.EnsureCollection(ctx, embedder.Dimension()); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	index := retrieval.NewIndex(vectorStore, embedder)
	ingestor := ingest.New(index, storage.NewDocumentStore(db))

	count, err := ingestor.IngestProfile(ctx, profileDir)
	if err != nil {
		return fmt.Errorf("profile ingestion failed: %w", err)
	}
	logging.WithFields(map[string]interface{}{
		"count": count,
		"dir":   profileDir,
	}).Info("profile documents indexed")

	if includeSlides {
		if err := ingestSlides(ctx, cfg, db, ingestor); err != nil {
			return fmt.Errorf("slides ingestion failed: %w", err)
		}
	}

	return nil
}

func ingestSlides(ctx context.Context, cfg *config.Config, db *storage.DB, ingestor *ingest.Ingestor) error {
	if cfg.Persona.SlidesFolderID == "" {
		return fmt.Errorf("persona.slides_folder_id not configured")
	}

	tokens := storage.NewTokenStore(db)
	token, err := tokens.Load(storage.ProviderGoogle)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("not authenticated with Google; visit /auth/login on the running twin first")
	}

	oauthClient := calendar.NewOAuthClient(calendar.OAuthConfig{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes:       calendar.DefaultOAuthConfig().Scopes,
	})

	driveSvc, err := oauthClient.DriveService(ctx, token)
	if err != nil {
		return fmt.Errorf("create drive service: %w", err)
	}
	slidesSvc, err := oauthClient.SlidesService(ctx, token)
	if err != nil {
		return fmt.Errorf("create slides service: %w", err)
	}

	client := slides.NewClient(driveSvc, slidesSvc)
	presentations, err := client.FetchAll(ctx, cfg.Persona.SlidesFolderID)
	if err != nil {
		return err
	}

	count, err := ingestor.IngestSlides(ctx, presentations)
	if err != nil {
		return err
	}
	logging.WithFields(map[string]interface{}{
		"decks":  len(presentations),
		"slides": count,
	}).Info("slide documents indexed")

	return nil
}
