package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/gorhill/cronexpr"
	log "github.com/sirupsen/logrus"
)

type configuration struct {
	global  *GlobalConfiguration
	storage *StorageConfiguration
	http    *HttpConfiguration
}

var (
	instance                *configuration
	once                    sync.Once
	configSearchDirectories []string
	explicitConfigFile      string
	hasGlobalDebugEnabled   bool
	backgroundForced        bool
)

const (
	CfgFileName   = "config.yaml"
	PathLocal     = "."
	PathGlobal    = "/etc/treefactor"
	EnvBackground = "TREEFACTOR_BACKGROUND"

	DefaultHttpPort         = 8080
	DefaultMaxUploadSize    = 4 * bytefmt.MEGABYTE
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultSnapshotSchedule = "*/5 * * * *"
)

func init() {
	configSearchDirectories = append(configSearchDirectories, PathLocal)

	userHome, err := os.UserHomeDir()

	if err == nil {
		configSearchDirectories = append(configSearchDirectories, filepath.Join(userHome, ".treefactor"))
	}

	configSearchDirectories = append(configSearchDirectories, PathGlobal)
}

// SetConfigFile pins the configuration file instead of searching for it. Must be called before GetInstance.
func SetConfigFile(path string) {
	explicitConfigFile = path
}

func SetGlobalDebugEnabled(enabled bool) {
	hasGlobalDebugEnabled = enabled

	if enabled {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug log level enabled")
	}
}

func HasGlobalDebugEnabled() bool {
	return hasGlobalDebugEnabled
}

func SetRunningInBackgroundForced(forced bool) {
	backgroundForced = forced
}

// IsRunningInBackgroundForced is true if interactive keyboard handling must not be set up.
func IsRunningInBackgroundForced() bool {
	if backgroundForced {
		return true
	}

	forced, err := strconv.ParseBool(os.Getenv(EnvBackground))
	return err == nil && forced
}

func GetInstance() *configuration {
	once.Do(func() {
		instance = NewConfigurationInstance(loadRaw())
	})
	return instance
}

func NewConfigurationInstance(cfg Raw) *configuration {
	return &configuration{
		global:  parseGlobal(cfg),
		storage: parseStorage(cfg.Sub("storage")),
		http:    parseHttp(cfg.Sub("http")),
	}
}

func (c *configuration) Global() *GlobalConfiguration {
	return c.global
}

func (c *configuration) Storage() *StorageConfiguration {
	return c.storage
}

func (c *configuration) Http() *HttpConfiguration {
	return c.http
}

func loadRaw() Raw {
	candidates := configSearchDirectories
	if explicitConfigFile != "" {
		candidates = []string{explicitConfigFile}
	}

	for _, candidate := range candidates {
		possibleConfigPath := candidate
		if explicitConfigFile == "" {
			possibleConfigPath = filepath.Join(candidate, CfgFileName)
		}
		log.Debugf("Checking for configuration file at %s", possibleConfigPath)

		file, err := os.Open(possibleConfigPath)
		if err != nil {
			continue
		}

		log.Infof("Found configuration file at location %s", possibleConfigPath)
		cfg, err := Parse(file)
		_ = file.Close()

		if err != nil {
			log.Fatalf("Failed to parse configuration file: %s", err)
		}

		return cfg
	}

	if explicitConfigFile != "" {
		log.Fatalf("Configuration file %s could not be opened", explicitConfigFile)
	}

	log.Warnf("Could not find any %s, using defaults", CfgFileName)
	return Raw{}
}

func parseGlobal(cfg Raw) *GlobalConfiguration {
	logLevel := log.InfoLevel
	if cfg.Has("log_level") {
		parsedLevel, err := log.ParseLevel(cfg.String("log_level"))
		if err == nil {
			logLevel = parsedLevel
		} else {
			log.Warnf("Cannot parse log level, defaulting to 'info': %s", err)
		}
	}

	httpPort := DefaultHttpPort
	if cfg.Has("port") {
		httpPort = int(cfg.Int64("port"))
	}

	maxUploadSize := uint64(DefaultMaxUploadSize)
	if cfg.Has("max_upload_size") {
		if size := cfg.Bytes("max_upload_size"); size > 0 {
			maxUploadSize = size
		} else {
			log.Warnf("Cannot parse max_upload_size %q, defaulting to %s", cfg.String("max_upload_size"), bytefmt.ByteSize(maxUploadSize))
		}
	}

	shutdownTimeout := DefaultShutdownTimeout
	if cfg.Has("shutdown_timeout") {
		if timeout := cfg.Duration("shutdown_timeout"); timeout > 0 {
			shutdownTimeout = timeout
		}
	}

	return &GlobalConfiguration{
		logLevel:         logLevel,
		httpPort:         httpPort,
		maxUploadSize:    maxUploadSize,
		shutdownTimeout:  shutdownTimeout,
		snapshotSchedule: parseSchedule(cfg),
	}
}

// parseSchedule returns nil if snapshots are disabled with `snapshot_schedule: off`.
func parseSchedule(cfg Raw) *cronexpr.Expression {
	line := cfg.StringOr("snapshot_schedule", DefaultSnapshotSchedule)
	if line == "off" || line == "false" {
		log.Info("Scheduled snapshots are disabled")
		return nil
	}

	schedule, err := cronexpr.Parse(line)
	if err != nil {
		log.Warnf("Cannot parse snapshot_schedule %q, defaulting to %q: %s", line, DefaultSnapshotSchedule, err)
		return cronexpr.MustParse(DefaultSnapshotSchedule)
	}

	return schedule
}

func parseStorage(cfg Raw) *StorageConfiguration {
	if cfg == nil {
		return &StorageConfiguration{Type: StorageMemory}
	}

	storage := &StorageConfiguration{
		Type:           StorageType(cfg.StringOr("type", string(StorageMemory))),
		Directory:      cfg.String("path"),
		Bucket:         cfg.String("bucket"),
		Prefix:         cfg.String("prefix"),
		Region:         cfg.StringOr("region", DefaultRegion),
		Endpoint:       cfg.String("endpoint"),
		AccessKey:      cfg.String("access_key_id"),
		SecretKey:      cfg.String("secret_access_key"),
		Token:          cfg.String("token"),
		ForcePathStyle: cfg.Bool("force_path_style"),
		RoleArn:        cfg.String("role_arn"),
		Driver:         cfg.StringOr("driver", "sqlite3"),
		Dsn:            cfg.String("dsn"),
	}

	if err := storage.Validate(); err != nil {
		log.Errorf("Storage configuration is invalid, falling back to in-memory storage: %s", err)
		return &StorageConfiguration{Type: StorageMemory}
	}

	return storage
}

func parseHttp(cfg Raw) *HttpConfiguration {
	http := &HttpConfiguration{}
	if cfg == nil {
		return http
	}

	if auth := cfg.Sub("basic_auth"); auth != nil {
		http.BasicAuth = &BasicAuthConfiguration{
			Username:     auth.String("username"),
			Password:     auth.String("password"),
			PasswordHash: auth.String("password_hash"),
		}
	}

	if tls := cfg.Sub("tls"); tls != nil {
		http.Tls = &TlsConfiguration{
			CertificatePath: tls.String("cert"),
			PrivateKeyPath:  tls.String("key"),
			IsStrict:        tls.Bool("strict"),
		}
	}

	return http
}

func (s *StorageConfiguration) Validate() error {
	switch s.Type {
	case StorageMemory:
	case StorageLocal:
		if s.Directory == "" {
			return fmt.Errorf("storage type %q requires 'path'", s.Type)
		}
	case StorageS3:
		if s.Bucket == "" {
			return fmt.Errorf("storage type %q requires 'bucket'", s.Type)
		}
	case StorageSql:
		if s.Dsn == "" {
			return fmt.Errorf("storage type %q requires 'dsn'", s.Type)
		}
	default:
		return fmt.Errorf("unknown storage type %q", s.Type)
	}

	return nil
}
