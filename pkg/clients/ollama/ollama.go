package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kyanome/rag-backend/config"
	"github.com/kyanome/rag-backend/pkg/clients/httptool"
	"github.com/kyanome/rag-backend/pkg/tools"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	clientNameOllama = "ollama"

	generateURL = "/api/generate"

	defaultTimeout = 120 * time.Second
)

// Client 本地 ollama 服务客户端，作为 openai 之外的备用生成后端
type Client struct {
	hc    *httptool.HTTPClient
	model string
}

var (
	instance *Client
	once     sync.Once
)

func GetInstance() *Client {
	once.Do(func() {
		addr := config.GetInstance().GetStringOrDefault(config.ClientOllamaAddr, "localhost:11434")
		model := config.GetInstance().GetString(config.ClientOllamaModel)

		hc := httptool.NewHTTPClient(addr, clientNameOllama, defaultTimeout, nil, nil)
		hc.SetHeader(httptool.HeaderContentType, "application/json")

		instance = &Client{
			hc:    hc,
			model: model,
		}
	})
	return instance
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	System  string           `json:"system,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

func optionsOf(temperature *float64) *generateOptions {
	if temperature == nil {
		return nil
	}
	return &generateOptions{Temperature: *temperature}
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate 非流式生成，返回完整内容
func (c *Client) Generate(ctx context.Context, system, prompt string, temperature *float64) (string, error) {
	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		System:  system,
		Stream:  false,
		Options: optionsOf(temperature),
	}

	body, err := c.hc.PostJSONWithContext(ctx, generateURL, req)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return "", errors.WithStack(err)
	}

	if resp.Response == "" {
		log.Warnf("%s generate response is empty", clientNameOllama)
	}

	return resp.Response, nil
}

// GenerateStream 流式生成，逐行读取 NDJSON，每个增量回调一次，返回完整内容
func (c *Client) GenerateStream(ctx context.Context, system, prompt string, temperature *float64, onDelta func(content string) error) (string, error) {
	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		System:  system,
		Stream:  true,
		Options: optionsOf(temperature),
	}

	body, err := c.hc.PostJSONStreamWithContext(ctx, generateURL, req)
	if err != nil {
		return "", err
	}
	defer tools.ErrorWithPrintContext(body.Close, "close ollama stream")

	var full []byte
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp generateResponse
		if err = json.Unmarshal(line, &resp); err != nil {
			return string(full), errors.WithStack(err)
		}

		if resp.Response != "" {
			full = append(full, resp.Response...)
			if onDelta != nil {
				if err = onDelta(resp.Response); err != nil {
					return string(full), err
				}
			}
		}

		if resp.Done {
			break
		}
	}

	if err = scanner.Err(); err != nil {
		return string(full), fmt.Errorf("%s stream read error: %w", clientNameOllama, err)
	}

	return string(full), nil
}
