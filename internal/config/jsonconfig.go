package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Константы для имен переменных окружения
const (
	EnvAddress         = "ADDRESS"
	EnvGRPCAddress     = "GRPC_ADDRESS"
	EnvRestore         = "RESTORE"
	EnvStoreInterval   = "STORE_INTERVAL"
	EnvStoreFile       = "FILE_STORAGE_PATH"
	EnvDatabaseDSN     = "DATABASE_DSN"
	EnvAuditFile       = "AUDIT_FILE"
	EnvAuditURL        = "AUDIT_URL"
	EnvKey             = "KEY"
	EnvForwardURL      = "FORWARD_URL"
	EnvReportInterval  = "REPORT_INTERVAL"
	EnvKafkaBrokers    = "KAFKA_BROKERS"
	EnvKafkaTopic      = "KAFKA_TOPIC"
	EnvTrustedSubnet   = "TRUSTED_SUBNET"
	EnvMonitorInterval = "MONITOR_INTERVAL"
	EnvHeapSource      = "HEAP_SOURCE"
	EnvLogLevel        = "LOG_LEVEL"
	EnvTraceFile       = "TRACE_FILE"
	EnvConfig          = "CONFIG"
)

// Константы для флагов командной строки
const (
	FlagAddress         = "a"
	FlagGRPCAddress     = "g"
	FlagRestore         = "r"
	FlagStoreInterval   = "i"
	FlagStoreFile       = "f"
	FlagDatabaseDSN     = "d"
	FlagAuditFile       = "audit-file"
	FlagAuditURL        = "audit-url"
	FlagKey             = "k"
	FlagForwardURL      = "forward-url"
	FlagReportInterval  = "report-interval"
	FlagKafkaBrokers    = "kafka-brokers"
	FlagKafkaTopic      = "kafka-topic"
	FlagTrustedSubnet   = "t"
	FlagMonitorInterval = "monitor-interval"
	FlagHeapSource      = "heap"
	FlagLogLevel        = "log-level"
	FlagTraceFile       = "trace"
	FlagConfig          = "c"
)

// CollectorJSONConfig представляет конфигурацию коллектора в формате JSON.
type CollectorJSONConfig struct {
	Address         string   `json:"address"`          // ADDRESS или флаг -a
	GRPCAddress     string   `json:"grpc_address"`     // GRPC_ADDRESS или флаг -g
	Restore         *bool    `json:"restore"`          // RESTORE или флаг -r
	StoreInterval   string   `json:"store_interval"`   // STORE_INTERVAL или флаг -i (в формате "1s")
	StoreFile       string   `json:"store_file"`       // FILE_STORAGE_PATH или флаг -f
	DatabaseDSN     string   `json:"database_dsn"`     // DATABASE_DSN или флаг -d
	AuditFile       string   `json:"audit_file"`       // AUDIT_FILE или флаг -audit-file
	AuditURL        string   `json:"audit_url"`        // AUDIT_URL или флаг -audit-url
	Key             string   `json:"key"`              // KEY или флаг -k
	ForwardURL      string   `json:"forward_url"`      // FORWARD_URL или флаг -forward-url
	ReportInterval  string   `json:"report_interval"`  // REPORT_INTERVAL или флаг -report-interval
	KafkaBrokers    []string `json:"kafka_brokers"`    // KAFKA_BROKERS или флаг -kafka-brokers
	KafkaTopic      string   `json:"kafka_topic"`      // KAFKA_TOPIC или флаг -kafka-topic
	TrustedSubnet   string   `json:"trusted_subnet"`   // TRUSTED_SUBNET или флаг -t
	MonitorInterval string   `json:"monitor_interval"` // MONITOR_INTERVAL или флаг -monitor-interval
	HeapSource      string   `json:"heap_source"`      // HEAP_SOURCE или флаг -heap
	LogLevel        string   `json:"log_level"`        // LOG_LEVEL или флаг -log-level
}

// AgentJSONConfig представляет конфигурацию агента в формате JSON.
type AgentJSONConfig struct {
	Address   string `json:"address"`    // ADDRESS или флаг -a
	Key       string `json:"key"`        // KEY или флаг -k
	TraceFile string `json:"trace_file"` // TRACE_FILE или флаг -trace
	LogLevel  string `json:"log_level"`  // LOG_LEVEL или флаг -log-level
}

// loadJSONConfig — обобщенная функция для загрузки JSON конфигурации.
func loadJSONConfig(filePath string, v interface{}) error {
	if filePath == "" {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadCollectorJSONConfig загружает конфигурацию коллектора из JSON файла.
// Пустой путь даёт пустую конфигурацию.
func LoadCollectorJSONConfig(filePath string) (*CollectorJSONConfig, error) {
	cfg := &CollectorJSONConfig{}
	if err := loadJSONConfig(filePath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAgentJSONConfig загружает конфигурацию агента из JSON файла.
func LoadAgentJSONConfig(filePath string) (*AgentJSONConfig, error) {
	cfg := &AgentJSONConfig{}
	if err := loadJSONConfig(filePath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseDuration парсит строку длительности в формате "1s", "1m", "1h".
// Если строка пуста, возвращает 0 и nil.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}

	return d, nil
}

// GetConfigFilePathWithFlag получает путь к файлу конфигурации, учитывая явно переданный флаг.
// Используется после разбора флагов.
func GetConfigFilePathWithFlag(flagValue string) string {
	// Флаги имеют больший приоритет
	if flagValue != "" {
		return flagValue
	}
	// Затем проверяем переменную окружения
	return EnvString(EnvConfig)
}
