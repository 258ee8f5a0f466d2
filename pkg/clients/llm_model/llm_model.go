package llm_model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kyanome/rag-backend/config"
	"github.com/kyanome/rag-backend/pkg/tools"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	clientNameChatModel = "chat_model"
)

type ClientChatModel struct {
	config *Config
}

type ResponseMsg struct {
	Message string `json:"message"`
}

var (
	instance *ClientChatModel
	once     sync.Once
)

func GetInstance() *ClientChatModel {
	once.Do(func() {
		conf := &Config{
			Addr:        config.GetInstance().GetString(config.ClientChatModelAddr),
			V1Addr:      config.GetInstance().GetString(config.ClientChatModelAddr),
			Model:       config.GetInstance().GetString(config.ClientChatModelModel),
			Token:       config.GetModelApiKey(),
			Temperature: cast.ToFloat32(config.GetInstance().GetFloat64(config.ClientChatModelTemperature)),
			MaxTokens:   config.GetInstance().GetInt(config.ClientChatModelMaxTokens),
		}

		instance = &ClientChatModel{
			config: conf,
		}
	})
	return instance
}

// temperatureOrDefault 请求级温度覆盖配置温度
func (zc *ClientChatModel) temperatureOrDefault(temperature *float64) float32 {
	if temperature != nil {
		return cast.ToFloat32(*temperature)
	}
	return zc.config.Temperature
}

// @Description 封装流式调用，每个增量内容回调一次，返回完整内容
// @Param c context.Context
// @Param messages []openai.ChatCompletionMessage
// @Param temperature *float64 为空时使用配置温度
// @Param onDelta func(string) error 回调返回 error 时中断流
// @Success string
// @Success error
func (zc *ClientChatModel) PostChatCompletionsStream(c context.Context, messages []openai.ChatCompletionMessage, temperature *float64, onDelta func(content string) error) (string, error) {
	defaultReq := openai.DefaultConfig(zc.config.Token)
	defaultReq.BaseURL = zc.config.V1Addr

	client := openai.NewClientWithConfig(defaultReq)

	stream, err := client.CreateChatCompletionStream(c, openai.ChatCompletionRequest{
		Model:       zc.config.Model,
		Messages:    messages,
		MaxTokens:   zc.config.MaxTokens,
		Temperature: zc.temperatureOrDefault(temperature),
		Stream:      true,
	})

	if err != nil {
		log.Errorf("%s stream creation error: %v", clientNameChatModel, err)
		return "", err
	}

	defer tools.ErrorWithPrintContext(stream.Close, "close stream")

	var full []byte
	for {
		response, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Errorf("%s stream.Recv error: %v", clientNameChatModel, err)
			return string(full), err
		}

		if len(response.Choices) == 0 {
			continue
		}

		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		full = append(full, delta...)
		if onDelta != nil {
			if err = onDelta(delta); err != nil {
				return string(full), err
			}
		}
	}

	return string(full), nil
}

// @Description 封装非流式调用，直接返回完整结果
// @Param c context.Context
// @Param messages []openai.ChatCompletionMessage
// @Success *openai.ChatCompletionResponse
// @Success error
func (zc *ClientChatModel) PostChatCompletionsNonStream(c context.Context, messages []openai.ChatCompletionMessage, temperature *float64) (*openai.ChatCompletionResponse, error) {
	defaultReq := openai.DefaultConfig(zc.config.Token)
	defaultReq.BaseURL = zc.config.V1Addr

	client := openai.NewClientWithConfig(defaultReq)

	// 创建请求结构
	request := openai.ChatCompletionRequest{
		Model:       zc.config.Model,
		Messages:    messages,
		MaxTokens:   zc.config.MaxTokens,
		Temperature: zc.temperatureOrDefault(temperature),
		Stream:      false,
	}

	// debug 出完整的请求参数，json格式（仅在 debug 级别时序列化）
	if log.GetLevel() == log.DebugLevel {
		requestJson, err := json.MarshalIndent(request, "", "  ")
		if err != nil {
			log.Errorf("%s chat completion request json marshal error: %v", clientNameChatModel, err)
			return nil, err
		}
		// 直接输出格式化的 JSON 到标准输出，避免日志系统转义换行符
		if _, err := fmt.Fprintf(os.Stdout, "[DEBUG] %s chat completion request:\n%s\n", clientNameChatModel, string(requestJson)); err != nil {
			log.Warnf("%s failed to write debug output: %v", clientNameChatModel, err)
		}
	}

	response, err := client.CreateChatCompletion(c, request)

	if err != nil {
		log.Errorf("%s chat completion error: %v", clientNameChatModel, err)
		return nil, err
	}

	// debug 出完整的响应内容，json格式（仅在 debug 级别时序列化）
	if log.GetLevel() == log.DebugLevel {
		responseJson, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			log.Errorf("%s chat completion response json marshal error: %v", clientNameChatModel, err)
		} else {
			// 直接输出格式化的 JSON 到标准输出，避免日志系统转义换行符
			if _, err := fmt.Fprintf(os.Stdout, "[DEBUG] %s chat completion response:\n%s\n", clientNameChatModel, string(responseJson)); err != nil {
				log.Warnf("%s failed to write debug output: %v", clientNameChatModel, err)
			}
		}
	}

	return &response, nil
}

// @Description 封装非流式调用，只返回响应内容字符串
// @Param c context.Context
// @Param messages []openai.ChatCompletionMessage
// @Success string
// @Success error
func (zc *ClientChatModel) PostChatCompletionsNonStreamContent(c context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	response, err := zc.PostChatCompletionsNonStream(c, messages, nil)
	if err != nil {
		return "", err
	}

	if response == nil {
		log.Errorf("%s chat completion response is nil", clientNameChatModel)
		return "", fmt.Errorf("chat completion response is nil")
	}

	if len(response.Choices) == 0 {
		log.Errorf("%s chat completion response has no choices", clientNameChatModel)
		return "", fmt.Errorf("chat completion response has no choices")
	}

	content := response.Choices[0].Message.Content
	if content == "" {
		log.Warnf("%s chat completion response content is empty", clientNameChatModel)
	}

	return content, nil
}
