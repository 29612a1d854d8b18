package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"time"

	"lecture-notes/pkg/config"
	"lecture-notes/pkg/generate"
	"lecture-notes/pkg/httpclient"
	"lecture-notes/pkg/ingest"
	"lecture-notes/pkg/pipeline"
	"lecture-notes/pkg/store"
	"lecture-notes/pkg/transcribe"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		pageURL    = flag.String("page", "", "Lecture transcript page URL to import")
		feedURL    = flag.String("feed", "", "RSS/Atom feed URL to import episodes from")
		max        = flag.Int("max", 20, "Max feed items to import (<=0 means no limit)")
		cfClient   = flag.Bool("cf", false, "Use curl-like headers for Cloudflare-protected sites")
	)
	flag.Parse()

	if *pageURL == "" && *feedURL == "" {
		log.Fatal("Usage: lectureimport -page <url> | -feed <url> [-max N] [-config config.yaml]")
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

	clientType := httpclient.BrowserClient
	if *cfClient {
		clientType = httpclient.CloudflareClient
	}
	client := httpclient.NewClient(clientType)

	imp := &importer{
		web:  ingest.NewWebImporter(client),
		http: client,
		pipe: pipe,
		transcriber: transcribe.NewOpenAITranscriber(
			cfg.Transcription.APIKey,
			cfg.Transcription.Model,
			cfg.Transcription.Language,
		),
	}

	start := time.Now()

	var episodes []ingest.Episode
	if *pageURL != "" {
		episodes = []ingest.Episode{{PageURL: *pageURL}}
	} else {
		episodes = collectEpisodes(*feedURL, *max)
	}

	episodes = filterNewEpisodes(ctx, lectureStore, episodes)
	log.Printf("Importing %d episodes...", len(episodes))

	imported := 0
	for _, ep := range episodes {
		if err := imp.importEpisode(ctx, ep); err != nil {
			log.Printf("Import %s failed: %v", episodeRef(ep), err)
			continue
		}
		imported++
	}

	log.Printf("Done. Imported %d/%d episodes. Duration: %s", imported, len(episodes), time.Since(start))
}

type importer struct {
	web         *ingest.WebImporter
	http        *httpclient.HTTPClient
	pipe        *pipeline.Pipeline
	transcriber transcribe.Transcriber
}

// importEpisode prefers a transcript page when the episode has one and
// falls back to downloading and transcribing the audio enclosure.
func (i *importer) importEpisode(ctx context.Context, ep ingest.Episode) error {
	if ep.PageURL != "" {
		return i.importPage(ctx, ep)
	}
	if ep.AudioURL != "" {
		return i.importAudio(ctx, ep)
	}
	return fmt.Errorf("episode %q has neither page nor audio", ep.Title)
}

// importPage fetches the page and runs the derivation pipeline on its
// text.
func (i *importer) importPage(ctx context.Context, ep ingest.Episode) error {
	page, err := i.web.Import(ctx, ep.PageURL)
	if err != nil {
		return err
	}

	title := ep.Title
	if title == "" {
		title = page.Title
	}

	lecture := pipeline.NewLecture(title, "", page.Text)
	lecture.SourceURL = page.URL

	return i.pipe.Process(ctx, lecture)
}

// importAudio downloads the enclosure to a temp file, transcribes it,
// and runs the pipeline on the transcript.
func (i *importer) importAudio(ctx context.Context, ep ingest.Episode) error {
	audioPath, err := i.downloadAudio(ep.AudioURL)
	if err != nil {
		return fmt.Errorf("download audio: %w", err)
	}
	defer os.Remove(audioPath)

	log.Printf("Transcribing %s...", ep.AudioURL)
	result, err := i.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcribe audio: %w", err)
	}

	lecture := pipeline.NewLecture(ep.Title, ep.AudioURL, result.Text)
	lecture.SourceURL = ep.AudioURL

	return i.pipe.Process(ctx, lecture)
}

// downloadAudio fetches the enclosure into a temp file, keeping the URL
// extension so format validation still applies.
func (i *importer) downloadAudio(audioURL string) (string, error) {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return "", err
	}
	ext := path.Ext(parsed.Path)
	if err := transcribe.ValidateAudioPath("episode" + ext); err != nil {
		return "", err
	}

	resp, err := i.http.Get(audioURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp("", "episode-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// collectEpisodes parses the feed and returns up to max importable
// episodes.
func collectEpisodes(feedURL string, max int) []ingest.Episode {
	episodes, err := ingest.NewFeedImporter().ParseFromURL(feedURL)
	if err != nil {
		log.Fatalf("Failed to parse feed: %v", err)
	}
	if max > 0 && len(episodes) > max {
		episodes = episodes[:max]
	}
	return episodes
}

// filterNewEpisodes drops root URLs and episodes a previous run already
// imported, keyed by the stored source URL.
func filterNewEpisodes(ctx context.Context, s store.Store, episodes []ingest.Episode) []ingest.Episode {
	imported := map[string]bool{}
	for page := 1; ; page++ {
		batch, err := s.ListLectures(ctx, page, 200)
		if err != nil {
			log.Fatalf("Failed to list existing lectures: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, l := range batch {
			if l.SourceURL != "" {
				imported[l.SourceURL] = true
			}
		}
		if len(batch) < 200 {
			break
		}
	}

	byRef := make(map[string]ingest.Episode, len(episodes))
	refs := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		ref := episodeRef(ep)
		if ref == "" {
			continue
		}
		byRef[ref] = ep
		refs = append(refs, ref)
	}

	filtered, err := ingest.FilterRefs(ctx, refs,
		ingest.NewBaseURLFilter(),
		ingest.NewAlreadyImportedFilter(imported),
	)
	if err != nil {
		log.Fatalf("Failed to filter episodes: %v", err)
	}

	out := make([]ingest.Episode, 0, len(filtered))
	for _, ref := range filtered {
		out = append(out, byRef[ref])
	}
	return out
}

// episodeRef is the dedup key for an episode: the page URL when it has
// one, the audio URL otherwise.
func episodeRef(ep ingest.Episode) string {
	if ep.PageURL != "" {
		return ep.PageURL
	}
	return ep.AudioURL
}
