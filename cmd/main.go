package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chat-rag/internal/config"
	"chat-rag/internal/embedding"
	"chat-rag/internal/filestore"
	"chat-rag/internal/generator"
	"chat-rag/internal/helper"
	"chat-rag/internal/models"
	"chat-rag/internal/rag"
	"chat-rag/internal/store"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	sessionID := flag.String("session", "default", "Session identifier")
	files := flag.String("file", "", "Comma-separated paths of files to ingest")
	question := flag.String("ask", "", "Question to answer from the session's files")
	scope := flag.String("scope", "", "Comma-separated file names to restrict the question to")
	clearFile := flag.String("clear", "", "File name whose chunks should be removed")
	clearSession := flag.Bool("clear-session", false, "Remove all files from the session")
	stats := flag.Bool("stats", false, "Print session statistics")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Warn().Err(err).Msg("Config not loaded, using defaults")
		cfg = config.Default()
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	if cfg.Store.Backend == "chromem" {
		if err := helper.CreateFolder(cfg.Store.Path); err != nil {
			log.Fatal().Err(err).Msg("Error creating store folder")
		}
	}

	engine, chunkStore := buildEngine(cfg)
	ctx := context.Background()

	switch {
	case *files != "":
		ingest(ctx, engine, *sessionID, strings.Split(*files, ","))
		exportIfDegraded(ctx, chunkStore, *sessionID)
	case *question != "":
		ask(ctx, engine, *sessionID, *question, splitScope(*scope))
	case *clearFile != "":
		if !engine.ClearFile(ctx, *sessionID, *clearFile) {
			os.Exit(1)
		}
	case *clearSession:
		if err := engine.ClearSession(ctx, *sessionID); err != nil {
			log.Fatal().Err(err).Msg("Error clearing session")
		}
	case *stats:
		printStats(ctx, engine, *sessionID)
	default:
		log.Fatal().Msg("Please provide files to ingest with -file or a question with -ask")
	}
}

func buildEngine(cfg *config.Config) (*rag.Engine, store.Store) {
	embedder := embedding.New(&cfg.EmbedLLM)
	chunkStore := store.New(cfg)

	gen, err := generator.New(&cfg.InferLLM)
	if err != nil {
		log.Warn().Err(err).Msg("Generator not available, answers will use assembled context")
	}

	return rag.NewEngine(cfg, &filestore.Local{}, embedder, chunkStore, gen), chunkStore
}

// exportIfDegraded snapshots the session collection to disk when the chromem
// backend could not open its persistent database.
func exportIfDegraded(ctx context.Context, chunkStore store.Store, sessionID string) {
	c, ok := chunkStore.(*store.Chromem)
	if !ok || !c.Degraded() {
		return
	}
	if err := c.Export(ctx, sessionID); err != nil {
		log.Warn().Err(err).Msg("Could not export session collection")
	}
}

func ingest(ctx context.Context, engine *rag.Engine, sessionID string, paths []string) {
	var refs []models.FileRef
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		fileType, err := filestore.DetectFileType(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Skipping file")
			continue
		}
		refs = append(refs, models.FileRef{
			Name: filepath.Base(path),
			Type: fileType,
			Path: path,
		})
	}

	reports := engine.IngestFiles(ctx, sessionID, refs)
	helper.PrettyPrint(reports)
}

func ask(ctx context.Context, engine *rag.Engine, sessionID, question string, fileScope []string) {
	response := engine.Ask(ctx, sessionID, question, fileScope)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Source)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Content)
}

func printStats(ctx context.Context, engine *rag.Engine, sessionID string) {
	sessionStats, err := engine.SessionStats(ctx, sessionID)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading session stats")
	}
	helper.PrettyPrint(sessionStats)
}

func splitScope(scope string) []string {
	if scope == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(scope, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
