package config

// Provider names accepted in EmbeddingConfig.Provider.
const (
	ProviderOllama = "ollama"
	ProviderONNX   = "onnx"
	ProviderMock   = "mock"
)

// Duplicate policies accepted in IndexingConfig.OnDuplicate.
const (
	DuplicateReject  = "reject"
	DuplicateReplace = "replace"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".local/share/semdex/index.db"
	}
	if cfg.Storage.KeywordIndexPath == "" {
		cfg.Storage.KeywordIndexPath = ".local/share/semdex/keyword.bleve"
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderOllama
	}
	if cfg.Embedding.Dimensions == 0 {
		if cfg.Embedding.Provider == ProviderOllama {
			cfg.Embedding.Dimensions = 768
		} else {
			cfg.Embedding.Dimensions = 384
		}
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.OllamaURL == "" {
		cfg.Embedding.OllamaURL = "http://localhost:11434"
	}
	if cfg.Embedding.OllamaModel == "" {
		cfg.Embedding.OllamaModel = "nomic-embed-text"
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 60
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = ".local/share/semdex/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}

	if cfg.Indexing.Workers == 0 {
		cfg.Indexing.Workers = 4
	}
	if cfg.Indexing.OnDuplicate == "" {
		cfg.Indexing.OnDuplicate = DuplicateReject
	}

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 500
	}
}
