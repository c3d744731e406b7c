// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Graph         GraphConfig         `yaml:"graph" mapstructure:"graph"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Vector        VectorConfig        `yaml:"vector" mapstructure:"vector"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Embedding     EmbeddingConfig     `yaml:"embedding" mapstructure:"embedding"`
	Retrieval     RetrievalConfig     `yaml:"retrieval" mapstructure:"retrieval"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// GraphConfig 图数据库配置
type GraphConfig struct {
	Neo4j Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`
}

// Neo4jConfig Neo4j 配置
type Neo4jConfig struct {
	URI               string        `yaml:"uri" mapstructure:"uri"`
	User              string        `yaml:"user" mapstructure:"user"`
	Password          string        `yaml:"password" mapstructure:"password"`
	Database          string        `yaml:"database" mapstructure:"database"`
	MaxConnectionPool int           `yaml:"max_connection_pool" mapstructure:"max_connection_pool"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout" mapstructure:"connection_timeout"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	// EmbeddingTTL 查询向量缓存时长，0 表示不缓存
	EmbeddingTTL time.Duration `yaml:"embedding_ttl" mapstructure:"embedding_ttl"`
}

// VectorConfig 向量数据库配置
type VectorConfig struct {
	Milvus MilvusConfig `yaml:"milvus" mapstructure:"milvus"`
}

// MilvusConfig Milvus 配置
type MilvusConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	CollectionPrefix   string `yaml:"collection_prefix" mapstructure:"collection_prefix"`
	IndexType          string `yaml:"index_type" mapstructure:"index_type"`
	MetricType         string `yaml:"metric_type" mapstructure:"metric_type"`
	HNSWM              int    `yaml:"hnsw_m" mapstructure:"hnsw_m"`
	HNSWEfConstruction int    `yaml:"hnsw_ef_construction" mapstructure:"hnsw_ef_construction"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// EmbeddingConfig Embedding 配置
type EmbeddingConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	Dimension int    `yaml:"dimension" mapstructure:"dimension"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
}

// RetrievalConfig 混合检索配置
type RetrievalConfig struct {
	// TopKPerStrategy 每种检索策略的召回条数
	TopKPerStrategy int `yaml:"top_k_per_strategy" mapstructure:"top_k_per_strategy"`
	// MaxHops 图遍历跳数上限
	MaxHops int `yaml:"max_hops" mapstructure:"max_hops"`
	// ContextBudgetChars 融合上下文的总字符预算
	ContextBudgetChars int `yaml:"context_budget_chars" mapstructure:"context_budget_chars"`
	// SnippetRadiusChars 转写片段提取时匹配位置前后的半径
	SnippetRadiusChars int `yaml:"snippet_radius_chars" mapstructure:"snippet_radius_chars"`
	// MaxSnippetsPerTalk 每场演讲提取的最大片段数
	MaxSnippetsPerTalk int `yaml:"max_snippets_per_talk" mapstructure:"max_snippets_per_talk"`
	// LeafTimeout 单个检索分支的超时
	LeafTimeout time.Duration `yaml:"leaf_timeout" mapstructure:"leaf_timeout"`
	// SynthesisRetryBackoff LLM 暂态失败的重试退避
	SynthesisRetryBackoff time.Duration `yaml:"synthesis_retry_backoff" mapstructure:"synthesis_retry_backoff"`

	Confidence ConfidenceWeights `yaml:"confidence" mapstructure:"confidence"`
	Vocabulary VocabularyConfig  `yaml:"vocabulary" mapstructure:"vocabulary"`
}

// ConfidenceWeights 置信度权重表，按部署语料标定的可调参数
type ConfidenceWeights struct {
	Semantic   float64 `yaml:"semantic" mapstructure:"semantic"`
	Transcript float64 `yaml:"transcript" mapstructure:"transcript"`
	Graph      float64 `yaml:"graph" mapstructure:"graph"`
	PathBonus  float64 `yaml:"path_bonus" mapstructure:"path_bonus"`
	Diversity  float64 `yaml:"diversity" mapstructure:"diversity"`
}

// VocabularyConfig 查询分类与扩展使用的词表，按部署领域可替换
type VocabularyConfig struct {
	// TranscriptTerms 触发转写检索的引述类词汇
	TranscriptTerms []string `yaml:"transcript_terms" mapstructure:"transcript_terms"`
	// MultiHopTerms 触发多跳路径检索的关系类词汇
	MultiHopTerms []string `yaml:"multi_hop_terms" mapstructure:"multi_hop_terms"`
	// GraphTerms 触发图遍历的词汇
	GraphTerms []string `yaml:"graph_terms" mapstructure:"graph_terms"`
	// SemanticTerms 触发语义检索的词汇
	SemanticTerms []string `yaml:"semantic_terms" mapstructure:"semantic_terms"`
	// ToolIndicators 暗示提问工具/技术的词汇，命中后追加 DomainTerms 扩大召回
	ToolIndicators []string `yaml:"tool_indicators" mapstructure:"tool_indicators"`
	// DomainTerms 领域技术词表
	DomainTerms []string `yaml:"domain_terms" mapstructure:"domain_terms"`
	// StopWords 关键词抽取时忽略的常见词
	StopWords []string `yaml:"stop_words" mapstructure:"stop_words"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter   string  `yaml:"exporter" mapstructure:"exporter"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors" mapstructure:"cors"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int  `yaml:"burst" mapstructure:"burst"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
