package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/viper"
	"github.com/tdex-network/arkd/internal/core/application"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the bitcoin network addresses are encoded for, one of
	// mainnet, testnet, regtest or signet
	NetworkKey = "NETWORK"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// RoundIntervalKey is the interval in seconds between two rounds
	RoundIntervalKey = "ROUND_INTERVAL"
	// WebhookEndpointsKey is the list of endpoints notified of every event
	WebhookEndpointsKey = "WEBHOOK_ENDPOINTS"
	// WebhookSecretKey is the secret used to sign the bearer token sent along
	// with every webhook notification
	WebhookSecretKey = "WEBHOOK_SECRET"
	// WebhookRateLimitKey is the max number of webhook requests per second
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"
	// MetricsPortKey is the port where the prometheus metrics are served, 0
	// disables the endpoint
	MetricsPortKey = "METRICS_PORT"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic arkd statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// MaxGenerationKey is the max generation an asset can be bred up to
	MaxGenerationKey = "MAX_GENERATION"

	DbLocation       = "db"
	ProfilerLocation = "stats"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("arkd", false)

	networks = map[string]*chaincfg.Params{
		"mainnet": &chaincfg.MainNetParams,
		"testnet": &chaincfg.TestNet3Params,
		"regtest": &chaincfg.RegressionNetParams,
		"signet":  &chaincfg.SigNetParams,
	}
)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ARK")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, "regtest")
	vip.SetDefault(DBTypeKey, application.DBInMemory)
	vip.SetDefault(RoundIntervalKey, 5)
	vip.SetDefault(WebhookRateLimitKey, 10)
	vip.SetDefault(MetricsPortKey, 9090)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)
	vip.SetDefault(MaxGenerationKey, 16)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetStringSlice(key string) []string {
	return vip.GetStringSlice(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetNetwork() *chaincfg.Params {
	return networks[strings.ToLower(GetString(NetworkKey))]
}

func GetRoundInterval() time.Duration {
	return time.Duration(GetInt(RoundIntervalKey)) * time.Second
}

func GetStatsInterval() time.Duration {
	return time.Duration(GetInt(StatsIntervalKey)) * time.Second
}

func GetDBDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetProfilerDir() string {
	return filepath.Join(GetDatadir(), ProfilerLocation)
}

// GetWebhookEndpoints returns the configured endpoints. They can be given
// either as a list or as a comma separated string.
func GetWebhookEndpoints() []string {
	endpoints := make([]string, 0)
	for _, e := range GetStringSlice(WebhookEndpointsKey) {
		for _, ee := range strings.Split(e, ",") {
			if ee = strings.TrimSpace(ee); ee != "" {
				endpoints = append(endpoints, ee)
			}
		}
	}
	return endpoints
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if GetNetwork() == nil {
		return fmt.Errorf(
			"unknown network %s, must be one of mainnet, testnet, regtest, signet",
			GetString(NetworkKey),
		)
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	if GetInt(RoundIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", RoundIntervalKey)
	}

	if GetInt(WebhookRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", WebhookRateLimitKey)
	}

	port := GetInt(MetricsPortKey)
	if port < 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port", MetricsPortKey)
	}

	if GetBool(EnableProfilerKey) && GetInt(StatsIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", StatsIntervalKey)
	}

	if GetInt(MaxGenerationKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", MaxGenerationKey)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) == application.DBBadger {
		if err := makeDirectoryIfNotExists(GetDBDir()); err != nil {
			return err
		}
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(GetProfilerDir()); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
