// Package main is the semdex CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/semdex/semdex/internal/cli"
	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embedding"
	"github.com/semdex/semdex/internal/extract"
	"github.com/semdex/semdex/internal/indexer"
	"github.com/semdex/semdex/internal/keyword"
	"github.com/semdex/semdex/internal/models"
	"github.com/semdex/semdex/internal/search"
	"github.com/semdex/semdex/internal/server"
	"github.com/semdex/semdex/internal/storage"
	"github.com/semdex/semdex/internal/watcher"
	"github.com/semdex/semdex/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "index":
		runIndex()
	case "search":
		runSearch()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "reset":
		runReset()
	case "watch":
		runWatch()
	case "server":
		runServer()
	case "version", "--version", "-v":
		fmt.Printf("semdex version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// loadConfigAndLogger loads the config at path ("" means the default lookup
// chain) and builds the process logger from its logging section.
func loadConfigAndLogger(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Keyword  keyword.Index
	Engine   *search.Engine
	Indexer  *indexer.Indexer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Keyword != nil {
		_ = c.Keyword.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := newEmbedder(&cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var kw keyword.Index = keyword.NopIndex{}
	if cfg.Storage.KeywordEnabledOrDefault() {
		bleveIdx, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
		if err != nil {
			_ = store.Close()
			_ = embedder.Close()
			return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
		}
		kw = bleveIdx
	}

	policy, err := duplicatePolicy(cfg.Indexing.OnDuplicate)
	if err != nil {
		_ = store.Close()
		_ = embedder.Close()
		_ = kw.Close()
		return nil, err
	}

	engine := search.NewEngine(store, embedder, kw, nil)
	idx := indexer.NewIndexer(store, embedder, kw, nil,
		indexer.WithLogger(logger),
		indexer.WithDuplicatePolicy(policy),
		indexer.WithWorkers(cfg.Indexing.Workers),
		indexer.WithIgnores(cfg.Indexing.IgnoreDirs),
	)

	return &Components{
		Storage:  store,
		Embedder: embedder,
		Keyword:  kw,
		Engine:   engine,
		Indexer:  idx,
	}, nil
}

func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		return embedding.NewOllamaEmbedder(embedding.OllamaConfig{
			BaseURL:    cfg.OllamaURL,
			Model:      cfg.OllamaModel,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
			CacheSize:  cfg.CacheSize,
		}), nil
	case config.ProviderONNX:
		e, err := embedding.NewONNXEmbedder(embedding.ONNXConfig{
			ModelPath:   cfg.ModelPath,
			LibraryPath: cfg.LibraryPath,
			Dimensions:  cfg.Dimensions,
			MaxTokens:   cfg.MaxTokens,
			CacheSize:   cfg.CacheSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize onnx embedder: %w", err)
		}
		return e, nil
	case config.ProviderMock:
		return embedding.NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (use ollama, onnx, or mock)", cfg.Provider)
	}
}

func duplicatePolicy(name string) (indexer.DuplicatePolicy, error) {
	switch name {
	case config.DuplicateReject:
		return indexer.PolicyReject, nil
	case config.DuplicateReplace:
		return indexer.PolicyReplace, nil
	default:
		return 0, fmt.Errorf("unknown on_duplicate policy %q (use reject or replace)", name)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	serverURL := fs.String("server", "", "server URL (set when semdex server is running to avoid index lock conflicts)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: semdex index [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		if err := indexViaHTTP(*serverURL, path, format); err != nil {
			fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, logger, err := loadConfigAndLogger(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		report, err := components.Indexer.IndexDirectory(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Indexing directory failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteReport(os.Stdout, report, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rec, err := components.Indexer.IndexFile(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		os.Exit(1)
	}
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rec)
		return
	}
	fmt.Printf("Indexed: %s\n", rec.Path)
}

func indexViaHTTP(serverURL, path string, format cli.OutputFormat) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]string{"path": abs})
	if err != nil {
		return err
	}
	resp, err := http.Post(serverURL+"/api/v1/index", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK: // directory report
		var report indexer.Report
		if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return cli.WriteReport(os.Stdout, &report, format)
	case http.StatusCreated: // single file record
		var rec models.FileRecord
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if format == cli.OutputJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(&rec)
		}
		fmt.Printf("Indexed: %s\n", rec.Path)
		return nil
	default:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: semdex search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  semdex search vacation photos from italy
  semdex search "vacation photos"              # same as above
  semdex search -keyword invoice_2024          # exact word match via the keyword index
  semdex search -limit 20 -output json query   # structured JSON for other apps
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so "semdex search query
// -limit 5" would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	serverURL := fs.String("server", "", "server URL (set when semdex server is running to avoid index lock conflicts)")
	limit := fs.Int("limit", 0, "number of results (0 = config default)")
	keywordMode := fs.Bool("keyword", false, "search the keyword index instead of semantic ranking")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:   queryStr,
		Limit:   *limit,
		Keyword: *keywordMode,
	}

	if *serverURL != "" {
		// The server applies the limit defaults itself.
		response, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, logger, err := loadConfigAndLogger(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	searchQuery.Normalize(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	ctx := context.Background()
	var response *models.SearchResponse
	if searchQuery.Keyword {
		response, err = components.Engine.SearchKeyword(ctx, searchQuery)
	} else {
		response, err = components.Engine.Search(ctx, searchQuery)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	serverURL := fs.String("server", "", "server URL (set when semdex server is running to avoid index lock conflicts)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: semdex delete [flags] <path>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	if *serverURL != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid path: %v\n", err)
			os.Exit(1)
		}
		req, _ := http.NewRequest(http.MethodDelete,
			*serverURL+"/api/v1/files?path="+url.QueryEscape(abs), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Deletion failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Deleted: %s\n", abs)
		return
	}

	cfg, logger, err := loadConfigAndLogger(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if err := components.Indexer.Delete(context.Background(), path); err != nil {
		fmt.Fprintf(os.Stderr, "Deletion failed: %v\n", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(path)
	fmt.Printf("Deleted: %s\n", abs)
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	EmbeddingProvider   string `json:"embedding_provider"`
	EmbeddingDimensions int    `json:"embedding_dimensions,omitempty"`
	DatabasePath        string `json:"database_path,omitempty"`
	KeywordIndexPath    string `json:"keyword_index_path,omitempty"`
	KeywordEnabled      bool   `json:"keyword_enabled"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Files          int64                 `json:"files"`
	KeywordDocs    uint64                `json:"keyword_docs"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	serverURL := fs.String("server", "", "server URL (set when semdex server is running)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, logger, err := loadConfigAndLogger(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer logger.Sync()

		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		fileCount, err := components.Storage.Count(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Files: fileCount,
			Config: &statusConfigResponse{
				EmbeddingProvider:   cfg.Embedding.Provider,
				EmbeddingDimensions: cfg.Embedding.Dimensions,
				DatabasePath:        cfg.Storage.DatabasePath,
				KeywordIndexPath:    cfg.Storage.KeywordIndexPath,
				KeywordEnabled:      cfg.Storage.KeywordEnabledOrDefault(),
			},
		}
		if docs, err := components.Keyword.DocCount(); err == nil {
			status.KeywordDocs = docs
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.KeywordIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("files:              %d   # count of indexed files\n", status.Files)
		fmt.Printf("keyword_docs:       %d   # count of keyword sidecar documents\n", status.KeywordDocs)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:   %d   # store + keyword index on disk\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			fmt.Printf("embedding_provider: %s\n", status.Config.EmbeddingProvider)
			if status.Config.EmbeddingDimensions > 0 {
				fmt.Printf("embedding_dims:     %d\n", status.Config.EmbeddingDimensions)
			}
			fmt.Printf("keyword_enabled:    %t\n", status.Config.KeywordEnabled)
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:      %s\n", status.Config.DatabasePath)
			}
			if status.Config.KeywordIndexPath != "" {
				fmt.Printf("keyword_index_path: %s\n", status.Config.KeywordIndexPath)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runReset() {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	serverURL := fs.String("server", "", "server URL (set when semdex server is running)")
	yes := fs.Bool("yes", false, "confirm the reset")
	_ = fs.Parse(os.Args[2:])

	if !*yes {
		fmt.Println("This deletes every indexed record. Re-run with -yes to confirm.")
		os.Exit(1)
	}

	if *serverURL != "" {
		resp, err := http.Post(*serverURL+"/api/v1/reset", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Reset failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Println("Index reset.")
		return
	}

	cfg, logger, err := loadConfigAndLogger(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	if err := components.Indexer.Reset(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Index reset.")
}

// newWatchIndexer builds the indexer used for filesystem events. Change
// events re-index files that are usually already stored, so duplicates
// always replace regardless of the configured ingest policy.
func newWatchIndexer(cfg *config.Config, components *Components, logger *zap.Logger) *indexer.Indexer {
	return indexer.NewIndexer(components.Storage, components.Embedder, components.Keyword, nil,
		indexer.WithLogger(logger),
		indexer.WithDuplicatePolicy(indexer.PolicyReplace),
		indexer.WithWorkers(cfg.Indexing.Workers),
		indexer.WithIgnores(cfg.Indexing.IgnoreDirs),
	)
}

// startWatcher wires a watcher over dirs that indexes changed files and
// drops removed ones. The initial directory sync runs before the watcher
// reports anything.
func startWatcher(cfg *config.Config, components *Components, dirs []string, logger *zap.Logger) (*watcher.Watcher, error) {
	watchIdx := newWatchIndexer(cfg, components, logger)
	ctx := context.Background()
	for _, dir := range dirs {
		report, err := watchIdx.IndexDirectory(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("initial sync of %s: %w", dir, err)
		}
		logger.Info("directory synced",
			zap.String("dir", dir),
			zap.Int("indexed", report.Indexed),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed))
	}

	w := watcher.NewWatcher(
		dirs,
		extract.SupportedExtensions(),
		func(path string) {
			if _, err := watchIdx.IndexFile(context.Background(), path); err != nil {
				logger.Warn("watch index failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := watchIdx.Delete(context.Background(), path); err != nil {
				logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
			}
		},
		watcher.WithLogger(logger),
		watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
		watcher.WithIgnores(cfg.Indexing.IgnoreDirs),
	)
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, err := loadConfigAndLogger(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	dirs := fs.Args()
	if len(dirs) == 0 {
		dirs = cfg.Watch.Directories
	}
	if len(dirs) == 0 {
		fmt.Println("Usage: semdex watch [flags] <directory>...")
		fmt.Println("No directories given and none set in watch.directories.")
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	w, err := startWatcher(cfg, components, dirs, logger)
	if err != nil {
		logger.Fatal("failed to start watcher", zap.Error(err))
	}
	defer w.Stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", strings.Join(dirs, ", "))
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, err := loadConfigAndLogger(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var w *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		w, err = startWatcher(cfg, components, cfg.Watch.Directories, logger)
		if err != nil {
			logger.Fatal("failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Engine, components.Indexer,
		components.Storage, components.Keyword, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printUsage() {
	fmt.Println(`semdex - semantic file search

Usage:
  semdex index [flags] <path>       Index a file or directory
  semdex search [flags] <query>     Search indexed files by meaning
  semdex delete [flags] <path>      Remove a file from the index
  semdex status [flags]             Show index and storage status
  semdex reset -yes [flags]         Delete every indexed record
  semdex watch [flags] <dir>...     Watch directories and keep the index fresh
  semdex server [flags]             Start the HTTP API server
  semdex version                    Show version
  semdex help                       Show this help

Common Flags:
  -config string    Config file path (default: ./semdex.yaml, then ~/.config/semdex/config.yaml)
  -server string    Server URL for commands that support it. Set this when
                    semdex server is running so the CLI goes through the API
                    instead of opening the locked on-disk indexes directly.

Search Flags:
  -limit int        Number of results (default from config)
  -keyword          Search the keyword index (exact words) instead of semantic ranking
  -output string    text, compact, or json (default: text)

Index Flags:
  -output string    text or json (default: text)

Status Flags:
  -output string    text or json (default: text)

Examples:
  semdex index ~/Documents
  semdex search tax return 2023
  semdex search -keyword invoice_2024
  semdex search -limit 20 -output json budget spreadsheet
  semdex delete ~/Documents/old-notes.txt
  semdex watch ~/Documents ~/Projects
  semdex server
  semdex status -output json`)
}
