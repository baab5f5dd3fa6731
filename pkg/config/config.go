package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"industrial-ai-backend/internal/ai"
)

type Config struct {
	// HTTP / logging
	HTTPAddr       string
	LogLevel       string
	LogDevelopment bool

	// Gemini Configuration
	GeminiAPIKey      string
	MaintenanceModel  string
	ConfiguratorModel string
	AIRequestTimeout  time.Duration
	AIMaxRetries      int
	AIRetryBackoff    time.Duration
	AIStrictFields    bool

	// MQTT Configuration
	MQTTEnabled  bool
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string

	MQTTTopicReading     string
	MQTTTopicAnalysisReq string
	MQTTTopicReport      string

	// ClickHouse Configuration
	ClickHouseEnabled bool
	ClickHouseAddr    string
	ClickHouseDB      string
	ClickHouseUser    string
	ClickHousePass    string

	// Minimum time between automatic analyses of the same device
	AnalysisCooldown time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	retry := ai.DefaultRetryPolicy()

	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: getEnvBool("LOG_DEVELOPMENT", false),

		// Gemini Configuration
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		MaintenanceModel:  getEnv("GEMINI_MAINTENANCE_MODEL", "gemini-2.5-flash"),
		ConfiguratorModel: getEnv("GEMINI_CONFIGURATOR_MODEL", "gemini-2.5-pro"),
		AIRequestTimeout:  getEnvDuration("AI_REQUEST_TIMEOUT", retry.Timeout),
		AIMaxRetries:      getEnvInt("AI_MAX_RETRIES", retry.MaxRetries),
		AIRetryBackoff:    getEnvDuration("AI_RETRY_BACKOFF", retry.Backoff),
		AIStrictFields:    getEnvBool("AI_STRICT_FIELDS", false),

		// MQTT Configuration
		MQTTEnabled:  getEnvBool("MQTT_ENABLED", true),
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "industrial-ai-backend"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),

		MQTTTopicReading:     getEnv("MQTT_TOPIC_READING", "sensor/+/reading"),
		MQTTTopicAnalysisReq: getEnv("MQTT_TOPIC_ANALYSIS_REQ", "maintenance/+/request"),
		MQTTTopicReport:      getEnv("MQTT_TOPIC_REPORT", "maintenance/{device_id}/report"),

		// ClickHouse Configuration
		ClickHouseEnabled: getEnvBool("CLICKHOUSE_ENABLED", true),
		ClickHouseAddr:    getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDB:      getEnv("CLICKHOUSE_DB", "industrial"),
		ClickHouseUser:    getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePass:    getEnv("CLICKHOUSE_PASS", ""),

		AnalysisCooldown: getEnvDuration("ANALYSIS_COOLDOWN", 5*time.Minute),
	}
}

// Validate checks the settings the AI views cannot run without.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return ai.ErrMissingAPIKey
	}
	return nil
}

// RetryPolicy returns the transport retry settings
func (c *Config) RetryPolicy() ai.RetryPolicy {
	return ai.RetryPolicy{
		MaxRetries: c.AIMaxRetries,
		Backoff:    c.AIRetryBackoff,
		Timeout:    c.AIRequestTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}

// getEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 {
		log.Printf("Warning: failed to parse %s as duration, using default", key)
		return defaultValue
	}
	return time.Duration(seconds * float64(time.Second))
}
