package config

import "flag"

// AgentConfig — конфигурация агента, воспроизводящего трассу записей производительности.
type AgentConfig struct {
	Address   NetAddress
	Key       string
	TraceFile string
	LogLevel  string
}

// LoadAgentConfig разбирает args и окружение в AgentConfig (приоритет как у коллектора).
func LoadAgentConfig(args []string) (*AgentConfig, error) {
	cfg := AgentConfig{
		Address:   NetAddress{Host: "localhost", Port: 8080},
		TraceFile: "trace.json",
		LogLevel:  "info",
	}
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)

	var configPath string
	fs.Var(&cfg.Address, FlagAddress, "Collector address host:port")
	fs.StringVar(&cfg.Key, FlagKey, cfg.Key, "Key for signing requests")
	fs.StringVar(&cfg.TraceFile, FlagTraceFile, cfg.TraceFile, "Performance entry trace to replay")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, cfg.LogLevel, "Log level")
	fs.StringVar(&configPath, FlagConfig, "", "Path to JSON config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	jc, err := LoadAgentJSONConfig(GetConfigFilePathWithFlag(configPath))
	if err != nil {
		return nil, err
	}
	if jc.Address != "" && !explicit[FlagAddress] {
		if err := cfg.Address.Set(jc.Address); err != nil {
			return nil, err
		}
	}
	if jc.Key != "" && !explicit[FlagKey] {
		cfg.Key = jc.Key
	}
	if jc.TraceFile != "" && !explicit[FlagTraceFile] {
		cfg.TraceFile = jc.TraceFile
	}
	if jc.LogLevel != "" && !explicit[FlagLogLevel] {
		cfg.LogLevel = jc.LogLevel
	}

	if err := EnvServer(&cfg.Address, EnvAddress); err != nil {
		return nil, err
	}
	if v := EnvString(EnvKey); v != "" {
		cfg.Key = v
	}
	if v := EnvString(EnvTraceFile); v != "" {
		cfg.TraceFile = v
	}
	if v := EnvString(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return &cfg, nil
}
