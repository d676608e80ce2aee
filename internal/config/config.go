package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Provider selects which chat completion backend generates replies.
const (
	ProviderArk  = "ark"
	ProviderGroq = "groq"
)

// DefaultPersonaPrompt drives the scripted-customer probe when no override
// is supplied via PERSONA_PROMPT.
const DefaultPersonaPrompt = `You are a potential customer interacting with a forex brokerage's customer service. Your task is to test their knowledge and service quality using provided FAQs.

Instructions:
1. Use natural, conversational language
2. Alternate between novice and experienced trader personas
3. Ask follow-up questions based on responses
4. Note any incorrect/incomplete information
5. End conversations politely

Begin the conversation when ready. Respond as the customer, awaiting the support agent's (user's) replies.`

// Config aggregates everything the service reads from the environment.
type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	AI       AIConfig
	Recorder RecorderConfig
	FAQFile  string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	recorder := loadRecorderConfig()

	return &Config{
		Server:   server,
		Session:  session,
		AI:       ai,
		Recorder: recorder,
		FAQFile:  strings.TrimSpace(os.Getenv("FAQ_FILE")),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as given.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// SessionConfig describes the probe session lifecycle.
type SessionConfig struct {
	IdleTimeout   time.Duration
	PollInterval  time.Duration
	PersonaPrompt string
	AgentName     string
}

func loadSessionConfig() (SessionConfig, error) {
	idleSeconds := 600
	if override, err := parseOptionalIntEnv("IDLE_TIMEOUT_SECONDS"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("IDLE_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		idleSeconds = *override
	}
	idle := time.Duration(idleSeconds) * time.Second

	poll := defaultPollInterval(idle)
	if override, err := parseOptionalIntEnv("POLL_INTERVAL_SECONDS"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return SessionConfig{}, fmt.Errorf("POLL_INTERVAL_SECONDS must be positive, got %d", *override)
		}
		poll = time.Duration(*override) * time.Second
	}
	if poll >= idle {
		return SessionConfig{}, fmt.Errorf("poll interval %s must be shorter than idle timeout %s", poll, idle)
	}

	prompt := os.Getenv("PERSONA_PROMPT")
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPersonaPrompt
	}

	return SessionConfig{
		IdleTimeout:   idle,
		PollInterval:  poll,
		PersonaPrompt: prompt,
		AgentName:     getEnvOrDefault("AGENT_NAME", "AI Agent"),
	}, nil
}

// defaultPollInterval picks a check period an order of magnitude finer than
// the idle window, clamped to [1s, 30s].
func defaultPollInterval(idle time.Duration) time.Duration {
	poll := idle / 10
	if poll < time.Second {
		poll = time.Second
	}
	if poll > 30*time.Second {
		poll = 30 * time.Second
	}
	return poll
}

// AIConfig describes the chat completion backend.
type AIConfig struct {
	Provider string

	// Ark credentials.
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string

	// Groq (OpenAI-compatible) credentials.
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	// Generation parameters shared by both providers.
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// ArkEnabled reports whether the Ark credentials are complete.
func (c AIConfig) ArkEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// GroqEnabled reports whether the Groq credentials are complete.
func (c AIConfig) GroqEnabled() bool {
	return c.GroqAPIKey != ""
}

// Enabled reports whether any generator backend can be constructed.
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkEnabled()
	case ProviderGroq:
		return c.GroqEnabled()
	default:
		return c.ArkEnabled() || c.GroqEnabled()
	}
}

// ResolveProvider returns the backend to use, honouring an explicit
// GENERATOR_PROVIDER and otherwise picking whichever has credentials.
func (c AIConfig) ResolveProvider() (string, error) {
	switch c.Provider {
	case ProviderArk:
		if !c.ArkEnabled() {
			return "", fmt.Errorf("GENERATOR_PROVIDER=ark but Ark credentials are incomplete, need ARK_MODEL plus ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
		}
		return ProviderArk, nil
	case ProviderGroq:
		if !c.GroqEnabled() {
			return "", fmt.Errorf("GENERATOR_PROVIDER=groq but GROQ_API_KEY is missing")
		}
		return ProviderGroq, nil
	case "":
		if c.ArkEnabled() {
			return ProviderArk, nil
		}
		if c.GroqEnabled() {
			return ProviderGroq, nil
		}
		return "", fmt.Errorf("no generator credentials configured")
	default:
		return "", fmt.Errorf("unknown GENERATOR_PROVIDER %q, expected %q or %q", c.Provider, ProviderArk, ProviderGroq)
	}
}

// NewChatModel builds an Ark chat model from the configured credentials.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("Ark credentials incomplete, need ARK_MODEL plus ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	temperature := c.Temperature
	topP := c.TopP
	maxTokens := c.MaxTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("GENERATOR_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("GENERATOR_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("GENERATOR_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		Provider:     strings.ToLower(strings.TrimSpace(os.Getenv("GENERATOR_PROVIDER"))),
		ArkAPIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
		ArkBaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		GroqAPIKey:   strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		GroqModel:    getEnvOrDefault("GROQ_MODEL", "llama-3.1-70b-versatile"),
		GroqBaseURL:  getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		Temperature:  1,
		TopP:         1,
		MaxTokens:    1024,
	}

	if temperature != nil {
		cfg.Temperature = float32(*temperature)
	}
	if topP != nil {
		cfg.TopP = float32(*topP)
	}
	if maxTokens != nil {
		cfg.MaxTokens = *maxTokens
	}

	return cfg, nil
}

// RecorderConfig describes the spreadsheet transcripts are appended to.
type RecorderConfig struct {
	CredentialsFile string
	SpreadsheetID   string
	Range           string
}

// Enabled reports whether the Sheets recorder can be constructed.
func (c RecorderConfig) Enabled() bool {
	return c.CredentialsFile != "" && c.SpreadsheetID != ""
}

func loadRecorderConfig() RecorderConfig {
	return RecorderConfig{
		CredentialsFile: strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		SpreadsheetID:   strings.TrimSpace(os.Getenv("SPREADSHEET_ID")),
		Range:           getEnvOrDefault("SHEET_RANGE", "Sheet1"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
