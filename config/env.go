package config

import "os"

const (
	// OSModelApiKey 模型 API Key 的环境变量名
	OSModelApiKey = "OPENAI_API_KEY"
	// ModelApiKeyPlaceholder 模板里的占位符，视为未配置
	ModelApiKeyPlaceholder = "your-openai-api-key-here"
)

// GetModelApiKey 读取模型 API Key，占位符视为空
func GetModelApiKey() string {
	key := os.Getenv(OSModelApiKey)
	if key == ModelApiKeyPlaceholder {
		return ""
	}
	return key
}
