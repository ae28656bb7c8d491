package config

import (
	"flag"
	"fmt"
	"time"
)

// CollectorConfig — итоговая конфигурация коллектора.
//
// Источники применяются по возрастанию приоритета: значения по умолчанию,
// JSON-файл (-c / CONFIG), явно указанные флаги, переменные окружения.
type CollectorConfig struct {
	Address         NetAddress
	GRPCAddress     string
	Restore         bool
	StoreInterval   time.Duration
	StoreFile       string
	DatabaseDSN     string
	AuditFile       string
	AuditURL        string
	Key             string
	ForwardURL      string
	ReportInterval  time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	TrustedSubnet   string
	MonitorInterval time.Duration
	HeapSource      string
	LogLevel        string
}

// DefaultCollectorConfig возвращает конфигурацию по умолчанию.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Address:         NetAddress{Host: "localhost", Port: 8080},
		Restore:         true,
		StoreInterval:   300 * time.Second,
		StoreFile:       "vitals.json",
		ReportInterval:  10 * time.Second,
		KafkaTopic:      "web-vitals",
		MonitorInterval: time.Second,
		HeapSource:      "runtime",
		LogLevel:        "info",
	}
}

// LoadCollectorConfig разбирает args и окружение в CollectorConfig.
func LoadCollectorConfig(args []string) (*CollectorConfig, error) {
	cfg := DefaultCollectorConfig()
	fs := flag.NewFlagSet("collector", flag.ContinueOnError)

	var brokers, configPath string
	fs.Var(&cfg.Address, FlagAddress, "HTTP address host:port")
	fs.StringVar(&cfg.GRPCAddress, FlagGRPCAddress, cfg.GRPCAddress, "gRPC health address host:port (empty disables)")
	fs.BoolVar(&cfg.Restore, FlagRestore, cfg.Restore, "Restore vitals from file at startup")
	fs.DurationVar(&cfg.StoreInterval, FlagStoreInterval, cfg.StoreInterval, "Store interval (0 saves on every emission)")
	fs.StringVar(&cfg.StoreFile, FlagStoreFile, cfg.StoreFile, "File storage path")
	fs.StringVar(&cfg.DatabaseDSN, FlagDatabaseDSN, cfg.DatabaseDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.AuditFile, FlagAuditFile, cfg.AuditFile, "Audit log file")
	fs.StringVar(&cfg.AuditURL, FlagAuditURL, cfg.AuditURL, "Audit endpoint URL")
	fs.StringVar(&cfg.Key, FlagKey, cfg.Key, "Key for request signatures")
	fs.StringVar(&cfg.ForwardURL, FlagForwardURL, cfg.ForwardURL, "Telemetry endpoint the vitals are forwarded to")
	fs.DurationVar(&cfg.ReportInterval, FlagReportInterval, cfg.ReportInterval, "Forwarding interval")
	fs.StringVar(&brokers, FlagKafkaBrokers, "", "Comma separated Kafka brokers")
	fs.StringVar(&cfg.KafkaTopic, FlagKafkaTopic, cfg.KafkaTopic, "Kafka topic for vitals")
	fs.StringVar(&cfg.TrustedSubnet, FlagTrustedSubnet, cfg.TrustedSubnet, "Trusted subnet CIDR for gRPC")
	fs.DurationVar(&cfg.MonitorInterval, FlagMonitorInterval, cfg.MonitorInterval, "Runtime monitor poll interval")
	fs.StringVar(&cfg.HeapSource, FlagHeapSource, cfg.HeapSource, "Heap source: runtime, process or none")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, cfg.LogLevel, "Log level")
	fs.StringVar(&configPath, FlagConfig, "", "Path to JSON config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit[FlagKafkaBrokers] {
		cfg.KafkaBrokers = SplitList(brokers)
	}

	jc, err := LoadCollectorJSONConfig(GetConfigFilePathWithFlag(configPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyJSON(jc, explicit); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *CollectorConfig) applyJSON(jc *CollectorJSONConfig, explicit map[string]bool) error {
	setString := func(flagName string, dst *string, v string) {
		if v != "" && !explicit[flagName] {
			*dst = v
		}
	}
	setDuration := func(flagName string, dst *time.Duration, v string) error {
		if v == "" || explicit[flagName] {
			return nil
		}
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config %s: %w", flagName, err)
		}
		*dst = d
		return nil
	}

	if jc.Address != "" && !explicit[FlagAddress] {
		if err := c.Address.Set(jc.Address); err != nil {
			return fmt.Errorf("config address: %w", err)
		}
	}
	if jc.Restore != nil && !explicit[FlagRestore] {
		c.Restore = *jc.Restore
	}
	if len(jc.KafkaBrokers) > 0 && !explicit[FlagKafkaBrokers] {
		c.KafkaBrokers = jc.KafkaBrokers
	}
	setString(FlagGRPCAddress, &c.GRPCAddress, jc.GRPCAddress)
	setString(FlagStoreFile, &c.StoreFile, jc.StoreFile)
	setString(FlagDatabaseDSN, &c.DatabaseDSN, jc.DatabaseDSN)
	setString(FlagAuditFile, &c.AuditFile, jc.AuditFile)
	setString(FlagAuditURL, &c.AuditURL, jc.AuditURL)
	setString(FlagKey, &c.Key, jc.Key)
	setString(FlagForwardURL, &c.ForwardURL, jc.ForwardURL)
	setString(FlagKafkaTopic, &c.KafkaTopic, jc.KafkaTopic)
	setString(FlagTrustedSubnet, &c.TrustedSubnet, jc.TrustedSubnet)
	setString(FlagHeapSource, &c.HeapSource, jc.HeapSource)
	setString(FlagLogLevel, &c.LogLevel, jc.LogLevel)

	if err := setDuration(FlagStoreInterval, &c.StoreInterval, jc.StoreInterval); err != nil {
		return err
	}
	if err := setDuration(FlagReportInterval, &c.ReportInterval, jc.ReportInterval); err != nil {
		return err
	}
	return setDuration(FlagMonitorInterval, &c.MonitorInterval, jc.MonitorInterval)
}

func (c *CollectorConfig) applyEnv() error {
	if err := EnvServer(&c.Address, EnvAddress); err != nil {
		return err
	}
	if restore, ok, err := EnvBool(EnvRestore); err != nil {
		return err
	} else if ok {
		c.Restore = restore
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvStoreInterval, &c.StoreInterval},
		{EnvReportInterval, &c.ReportInterval},
		{EnvMonitorInterval, &c.MonitorInterval},
	}
	for _, d := range durations {
		if _, ok := lookupNonEmpty(d.key); !ok {
			continue
		}
		v, err := EnvDuration(d.key)
		if err != nil {
			return err
		}
		*d.dst = v
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvGRPCAddress, &c.GRPCAddress},
		{EnvStoreFile, &c.StoreFile},
		{EnvDatabaseDSN, &c.DatabaseDSN},
		{EnvAuditFile, &c.AuditFile},
		{EnvAuditURL, &c.AuditURL},
		{EnvKey, &c.Key},
		{EnvForwardURL, &c.ForwardURL},
		{EnvKafkaTopic, &c.KafkaTopic},
		{EnvTrustedSubnet, &c.TrustedSubnet},
		{EnvHeapSource, &c.HeapSource},
		{EnvLogLevel, &c.LogLevel},
	}
	for _, s := range strs {
		if v := EnvString(s.key); v != "" {
			*s.dst = v
		}
	}
	if brokers := EnvList(EnvKafkaBrokers); len(brokers) > 0 {
		c.KafkaBrokers = brokers
	}
	return nil
}

func lookupNonEmpty(key string) (string, bool) {
	v := EnvString(key)
	return v, v != ""
}
