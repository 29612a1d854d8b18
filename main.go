package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lecture-notes/pkg/archive"
	"lecture-notes/pkg/config"
	"lecture-notes/pkg/export"
	"lecture-notes/pkg/generate"
	"lecture-notes/pkg/pipeline"
	"lecture-notes/pkg/store"
	"lecture-notes/pkg/transcribe"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		audioPath  = flag.String("audio", "", "Audio file to transcribe and process")
		title      = flag.String("title", "", "Lecture title (defaults to the audio file name)")
		doExport   = flag.Bool("export", true, "Write notes, quiz, and flashcard files after processing")
		doArchive  = flag.Bool("archive", false, "Archive completed lectures to Postgres after processing")
	)
	flag.Parse()

	if *audioPath == "" {
		log.Fatal("Usage: lecture-notes -audio <file> [-title <title>] [-config config.yaml]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	lectureStore := store.NewMongoStore(cfg.Mongo.ConnectionString, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err := lectureStore.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer lectureStore.Close(ctx)

	transcriber := transcribe.NewOpenAITranscriber(
		cfg.Transcription.APIKey,
		cfg.Transcription.Model,
		cfg.Transcription.Language,
	)

	svc, err := generate.NewGeminiService(cfg.Generation.APIKeys, cfg.Generation.Model)
	if err != nil {
		log.Fatalf("Failed to initialize generation service: %v", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		Store: lectureStore,
		Generators: []generate.Generator{
			generate.NewSummaryGenerator(svc),
			generate.NewQuizGenerator(svc),
			generate.NewFlashcardGenerator(svc),
		},
		MaxChunkSize: cfg.Chunking.MaxSize,
		Overlap:      cfg.Chunking.Overlap,
		Workers:      cfg.Generation.Workers,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	start := time.Now()
	log.Printf("Transcribing %s...", *audioPath)
	result, err := transcriber.Transcribe(ctx, *audioPath)
	if err != nil {
		log.Fatalf("Transcription failed: %v", err)
	}
	log.Printf("Transcription done (%d characters)", len(result.Text))

	lectureTitle := *title
	if lectureTitle == "" {
		base := filepath.Base(*audioPath)
		lectureTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	lecture := pipeline.NewLecture(lectureTitle, *audioPath, result.Text)
	if err := pipe.Process(ctx, lecture); err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	if *doExport {
		if err := exportArtifacts(ctx, lectureStore, lecture.ID, cfg.Export.Dir); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	}

	if *doArchive {
		if err := runArchive(ctx, lectureStore, cfg); err != nil {
			log.Fatalf("Archive failed: %v", err)
		}
	}

	log.Printf("Done. Lecture %s status=%s. Duration: %s", lecture.ID, lecture.Status, time.Since(start))
}

// exportArtifacts writes the lecture's stored artifacts into the export
// directory as notes, quiz markdown, and flashcard TSV.
func exportArtifacts(ctx context.Context, s store.Store, id, dir string) error {
	lecture, err := s.GetLecture(ctx, id)
	if err != nil {
		return fmt.Errorf("load lecture for export: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	base := slugify(lecture.Title)

	if lecture.Summary != nil {
		path := filepath.Join(dir, base+"-notes.txt")
		if err := os.WriteFile(path, []byte(export.SummaryText(lecture.Title, lecture.Summary)), 0o644); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}
	if lecture.Quiz != nil {
		path := filepath.Join(dir, base+"-quiz.md")
		if err := os.WriteFile(path, []byte(export.QuizMarkdown(lecture.Title, lecture.Quiz)), 0o644); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}
	if lecture.Flashcards != nil {
		path := filepath.Join(dir, base+"-flashcards.tsv")
		if err := os.WriteFile(path, []byte(export.FlashcardsTSV(base, lecture.Flashcards)), 0o644); err != nil {
			return err
		}
		log.Printf("Wrote %s", path)
	}

	return nil
}

// runArchive copies completed lectures into the configured Postgres.
func runArchive(ctx context.Context, s store.Store, cfg *config.Config) error {
	pg, err := connectArchiveDB(ctx, cfg)
	if err != nil {
		return err
	}

	archiver, err := archive.NewArchiver(archive.Config{Store: s, Postgres: pg})
	if err != nil {
		return err
	}
	return archiver.ArchiveCompleted(ctx)
}

// connectArchiveDB picks the archive backend from config: a direct
// Postgres DSN wins, Supabase is the fallback.
func connectArchiveDB(ctx context.Context, cfg *config.Config) (store.DBProvider, error) {
	if cfg.Archive.PostgresDSN != "" {
		client := store.NewPostgresClient(store.PostgresConfig{DSN: cfg.Archive.PostgresDSN})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}
	if cfg.Archive.SupabaseURL != "" {
		client := store.NewSupabaseClient(store.SupabaseConfig{
			SupabaseURL: cfg.Archive.SupabaseURL,
			SupabaseKey: cfg.Archive.SupabaseKey,
			Password:    cfg.Archive.SupabasePassword,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("archive requested but no postgres_dsn or supabase_url configured")
}

// slugify turns a title into a safe file name stem.
func slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "lecture"
	}
	return out
}
