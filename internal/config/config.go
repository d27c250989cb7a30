// Package config provides configuration loading for riftqa services.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SERVER_PORT, PIPELINE_CHUNK_SIZE, ...)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"fmt"
	"time"

	"github.com/riftlabs/riftqa/internal/logging"
)

// ServerConfig holds HTTP server settings shared by both services.
type ServerConfig struct {
	Host string `koanf:"host"`

	Port int `koanf:"port"`

	// ReadTimeout and WriteTimeout bound request handling. Write is long
	// because /query waits on the language model.
	ReadTimeout  Duration `koanf:"read_timeout"`
	WriteTimeout Duration `koanf:"write_timeout"`
}

// LLMConfig selects and configures the chat model backend.
type LLMConfig struct {
	// Provider is one of: openai, ollama, anthropic.
	Provider string `koanf:"provider"`

	Model string `koanf:"model"`

	Temperature float64 `koanf:"temperature"`

	OpenAIAPIKey    Secret `koanf:"openai_api_key"`
	AnthropicAPIKey Secret `koanf:"anthropic_api_key"`
	OllamaHost      string `koanf:"ollama_host"`

	// RequestTimeout bounds a single chat call.
	RequestTimeout Duration `koanf:"request_timeout"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	// Provider is one of: openai, ollama.
	Provider string `koanf:"provider"`

	Model string `koanf:"model"`

	OpenAIAPIKey Secret `koanf:"openai_api_key"`
	OllamaHost   string `koanf:"ollama_host"`

	// BatchSize caps texts per embedding request so a transient failure
	// costs one batch, not the whole corpus.
	BatchSize int `koanf:"batch_size"`

	// RequestTimeout bounds a single embedding batch. Generous: bulk
	// ingestion batches are large.
	RequestTimeout Duration `koanf:"request_timeout"`
}

// VectorStoreConfig configures the vector index backend.
type VectorStoreConfig struct {
	// Provider is one of: chromem, qdrant.
	Provider string `koanf:"provider"`

	// Path is the persistence directory for the chromem backend.
	Path string `koanf:"path"`

	// URL is the Qdrant server URL for the qdrant backend.
	URL string `koanf:"url"`

	Collection string `koanf:"collection"`
}

// QueueConfig configures the Redis job broker.
type QueueConfig struct {
	RedisURL Secret `koanf:"redis_url"`

	// Name is the list key jobs are pushed to.
	Name string `koanf:"name"`

	// DequeueTimeout is how long the worker blocks per poll.
	DequeueTimeout Duration `koanf:"dequeue_timeout"`
}

// JobStoreConfig configures the Postgres job-status store.
type JobStoreConfig struct {
	PostgresURL Secret `koanf:"postgres_url"`
}

// CollectorsConfig toggles the document sources.
type CollectorsConfig struct {
	UseDataDragon bool `koanf:"use_data_dragon"`
	UseWikiScrape bool `koanf:"use_wiki_scrape"`
	UseRiotAPI    bool `koanf:"use_riot_api"`
	UseSampleData bool `koanf:"use_sample_data"`

	DataDragonVersion  string `koanf:"data_dragon_version"`
	DataDragonLanguage string `koanf:"data_dragon_language"`
	WikiBaseURL        string `koanf:"wiki_base_url"`
	RiotAPIKey         Secret `koanf:"riot_api_key"`
	RiotAPIRegion      string `koanf:"riot_api_region"`
}

// ChunkingConfig bounds the text splitter.
type ChunkingConfig struct {
	Size    int `koanf:"size"`
	Overlap int `koanf:"overlap"`
}

// QueryConfig tunes the RAG query orchestrator.
type QueryConfig struct {
	// RetrievalK is the default number of chunks retrieved per query.
	RetrievalK int `koanf:"retrieval_k"`

	// MinQuestionLength is the validation floor for questions.
	MinQuestionLength int `koanf:"min_question_length"`
}

// PipelineConfig is the full configuration for the data-pipeline service.
type PipelineConfig struct {
	Server     ServerConfig      `koanf:"server"`
	Logging    logging.Config    `koanf:"logging"`
	Embedding  EmbeddingConfig   `koanf:"embedding"`
	Store      VectorStoreConfig `koanf:"store"`
	Queue      QueueConfig       `koanf:"queue"`
	Jobs       JobStoreConfig    `koanf:"jobs"`
	Collectors CollectorsConfig  `koanf:"collectors"`
	Chunking   ChunkingConfig    `koanf:"chunking"`
}

// RAGConfig is the full configuration for the RAG query service.
type RAGConfig struct {
	Server    ServerConfig      `koanf:"server"`
	Logging   logging.Config    `koanf:"logging"`
	LLM       LLMConfig         `koanf:"llm"`
	Embedding EmbeddingConfig   `koanf:"embedding"`
	Store     VectorStoreConfig `koanf:"store"`
	Query     QueryConfig       `koanf:"query"`
}

func (c *ServerConfig) applyDefaults(defaultPort int) {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = Duration(5 * time.Second)
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = Duration(60 * time.Second)
	}
}

func (c *LLMConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.OllamaHost == "" {
		c.OllamaHost = "http://localhost:11434"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(60 * time.Second)
	}
}

func (c *EmbeddingConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.OllamaHost == "" {
		c.OllamaHost = "http://localhost:11434"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = Duration(5 * time.Minute)
	}
}

func (c *VectorStoreConfig) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "chromem"
	}
	if c.Path == "" {
		c.Path = "./chroma_db"
	}
	if c.URL == "" {
		c.URL = "http://localhost:6333"
	}
	if c.Collection == "" {
		c.Collection = "lol_knowledge"
	}
}

// An unset RedisURL selects the in-process queue; same for PostgresURL and
// the in-process job store.
func (c *QueueConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = "pipeline_jobs"
	}
	if c.DequeueTimeout == 0 {
		c.DequeueTimeout = Duration(5 * time.Second)
	}
}

func (c *CollectorsConfig) applyDefaults() {
	// All toggles off means unconfigured: enable the no-credential sources.
	if !c.UseDataDragon && !c.UseWikiScrape && !c.UseRiotAPI && !c.UseSampleData {
		c.UseDataDragon = true
		c.UseSampleData = true
	}
	if c.DataDragonLanguage == "" {
		c.DataDragonLanguage = "en_US"
	}
	if c.WikiBaseURL == "" {
		c.WikiBaseURL = "https://leagueoflegends.fandom.com/wiki"
	}
	if c.RiotAPIRegion == "" {
		c.RiotAPIRegion = "na1"
	}
}

// ApplyDefaults sets default values for unset fields.
func (c *PipelineConfig) ApplyDefaults() {
	c.Server.applyDefaults(8003)
	c.Logging.ApplyDefaults()
	c.Embedding.applyDefaults()
	c.Store.applyDefaults()
	c.Queue.applyDefaults()
	c.Collectors.applyDefaults()
	if c.Chunking.Size == 0 {
		c.Chunking.Size = 1000
	}
	if c.Chunking.Overlap == 0 {
		c.Chunking.Overlap = 200
	}
}

// Validate checks the pipeline configuration.
func (c *PipelineConfig) Validate() error {
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking overlap (%d) must be smaller than size (%d)", c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding batch_size must be positive")
	}
	return nil
}

// ApplyDefaults sets default values for unset fields.
func (c *RAGConfig) ApplyDefaults() {
	c.Server.applyDefaults(8002)
	c.Logging.ApplyDefaults()
	c.LLM.applyDefaults()
	c.Embedding.applyDefaults()
	c.Store.applyDefaults()
	if c.Query.RetrievalK == 0 {
		c.Query.RetrievalK = 3
	}
	if c.Query.MinQuestionLength == 0 {
		c.Query.MinQuestionLength = 3
	}
}

// Validate checks the RAG configuration.
func (c *RAGConfig) Validate() error {
	if c.Query.RetrievalK <= 0 {
		return fmt.Errorf("query retrieval_k must be positive")
	}
	if c.Query.MinQuestionLength <= 0 {
		return fmt.Errorf("query min_question_length must be positive")
	}
	return nil
}
