//nolint:typecheck
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kyanome/rag-backend/constant"
	"github.com/kyanome/rag-backend/pkg/file"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	Path = "config"

	OSConfigPath      = "CONFIG_PATH"
	DefaultConfigName = "config.yaml"
	TypeYaml          = "yaml"
	ProjectName       = "rag-backend"

	ApplicationLogRequest = "app.log.request"
	AppLogLevel           = "app.log.level"
	AppLogReportcaller    = "app.log.reportcaller"
	AppHost               = "app.host"
	AppFileStoragePath    = "app.fileStoragePath"

	BaseDbXormType     = "base.db.xorm.type"
	BaseDbXormUsername = "base.db.xorm.username"
	BaseDbXormPassword = "base.db.xorm.password"
	BaseDbXormHost     = "base.db.xorm.host"
	BaseDbXormPort     = "base.db.xorm.port"
	BaseDbXormName     = "base.db.xorm.name"
	BaseDbXormShowsql  = "base.db.xorm.showsql"
	// 只读副本，逗号分隔的 host:port 列表，可以为空
	BaseDbXormReplicas = "base.db.xorm.replicas"
	BaseDbXormMaxOpen  = "base.db.xorm.maxOpenConns"
	BaseDbXormMaxIdle  = "base.db.xorm.maxIdleConns"
	// 启动时是否自动执行 db/migrations 下的迁移
	BaseDbMigrate     = "base.db.migrate.auto"
	BaseDbMigratePath = "base.db.migrate.path"

	ClientsCommonRequestLog = "clients.http.requestLog" // pkg/clients http client 是否打印请求

	// 大模型调用配置，provider 可选 openai / ollama
	ClientChatModelProvider    = "clients.llmModel.provider"
	ClientChatModelAddr        = "clients.llmModel.addr"
	ClientChatModelModel       = "clients.llmModel.model"
	ClientChatModelTemperature = "clients.llmModel.temperature"
	ClientChatModelMaxTokens   = "clients.llmModel.maxTokens"

	// 本地 ollama 服务配置
	ClientOllamaAddr  = "clients.ollama.addr"
	ClientOllamaModel = "clients.ollama.model"

	// Embedding 客户端配置键
	EmbeddingConfigKeyModelName  = "clients.embedding.model_name"
	EmbeddingConfigKeyBaseURL    = "clients.embedding.base_url"
	EmbeddingConfigKeyDimensions = "clients.embedding.dimensions"

	// redis 配置
	RedisClientDb       = "clients.redisClient.db"
	RedisClientHost     = "clients.redisClient.host"
	RedisClientPassword = "clients.redisClient.password"

	// 检索配置
	SearchDefaultLimit        = "search.default_limit"
	SearchSimilarityThreshold = "search.similarity_threshold"
	SearchCacheEnabled        = "search.cache_enabled"
	SearchCacheTTLSeconds     = "search.cache_ttl_seconds"

	// 分块配置
	ChunkMaxSize  = "chunking.chunk_max_size"
	ChunkOverlap  = "chunking.chunk_overlap"
	ChunkMinSize  = "chunking.chunk_min_size"
	ChunkStrategy = "chunking.chunk_strategy"

	// RAG 配置
	RagMaxResults       = "rag.max_results"
	RagMaxContextLength = "rag.max_context_length"
	RagIncludeCitations = "rag.include_citations"

	// JWT 配置
	JwtSecretKey              = "jwt.secret_key"
	JwtAccessTokenExpireMin   = "jwt.access_token_expire_minutes"
	JwtRefreshTokenExpireDays = "jwt.refresh_token_expire_days"

	// 限流配置（每秒请求数 / 突发量）
	RateLimitQPS   = "ratelimit.qps"
	RateLimitBurst = "ratelimit.burst"
)

var instance *config
var once sync.Once

type config struct {
	*viper.Viper
}

func GetInstance() *config {
	once.Do(func() {
		var configPath string

		envConfigPath := os.Getenv(OSConfigPath)
		if strings.EqualFold(envConfigPath, constant.EmptyString) {
			configPath = fmt.Sprintf("./%v", DefaultConfigName)
			if !file.CheckFileIsExist(configPath) {
				path, err := os.Getwd()
				if err != nil {
					panic("get config path error:" + err.Error())
				}
				configPath = fmt.Sprintf("%v/%v", path[:strings.Index(path, ProjectName)+len(ProjectName)], DefaultConfigName)
			}
			log.Infof("use default path %s", configPath)
		} else {
			log.Infof("find success in constant CONFIG_PATH, use %s", envConfigPath)
			configPath = fmt.Sprintf("%v/%v", envConfigPath, DefaultConfigName)
		}

		configInstance := &config{Viper: viper.New()}
		configInstance.SetConfigType(TypeYaml)
		configInstance.SetConfigFile(configPath)
		if err := configInstance.ReadInConfig(); err != nil {
			panic(err)
		}

		configInstance.AutomaticEnv()
		replacer := strings.NewReplacer(".", "_")
		configInstance.SetEnvKeyReplacer(replacer)

		// 配置文件热加载，调大日志级别等改动无需重启服务
		configInstance.OnConfigChange(func(e fsnotify.Event) {
			log.Infof("config file changed: %s", e.Name)
		})
		configInstance.WatchConfig()

		keys := configInstance.AllKeys()
		for _, key := range keys {
			fmt.Println(key, ":", configInstance.Get(key))
		}

		instance = configInstance
	})
	return instance
}

func (c *config) GetString(key string) string {
	return c.Viper.GetString(key)
}

func (c *config) GetStringOrDefault(key string, defaultValue string) string {
	if c.IsSet(key) {
		return c.GetString(key)
	}

	return defaultValue
}

func (c *config) GetInt(key string) int {
	return c.Viper.GetInt(key)
}

func (c *config) GetIntOrDefault(key string, defaultValue int) int {
	if c.IsSet(key) {
		return c.GetInt(key)
	}

	return defaultValue
}

func (c *config) GetBool(key string) bool {
	return c.Viper.GetBool(key)
}

func (c *config) GetBoolOrDefault(key string, defaultValue bool) bool {
	if c.IsSet(key) {
		return c.GetBool(key)
	}

	return defaultValue
}

func (c *config) GetFloat64(key string) float64 {
	return c.Viper.GetFloat64(key)
}

func (c *config) GetFloat64OrDefault(key string, defaultValue float64) float64 {
	if c.IsSet(key) {
		return c.GetFloat64(key)
	}

	return defaultValue
}
