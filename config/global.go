package config

import (
	"time"

	"github.com/gorhill/cronexpr"
	log "github.com/sirupsen/logrus"
)

type GlobalConfiguration struct {
	logLevel         log.Level
	httpPort         int
	maxUploadSize    uint64
	shutdownTimeout  time.Duration
	snapshotSchedule *cronexpr.Expression
}

func (config *GlobalConfiguration) LogLevel() log.Level {
	return config.logLevel
}

func (config *GlobalConfiguration) HttpPort() int {
	return config.httpPort
}

// MaxUploadSize limits the body of an uploaded tree listing, in bytes.
func (config *GlobalConfiguration) MaxUploadSize() uint64 {
	return config.maxUploadSize
}

func (config *GlobalConfiguration) ShutdownTimeout() time.Duration {
	return config.shutdownTimeout
}

// SnapshotSchedule is nil when scheduled snapshots are disabled.
func (config *GlobalConfiguration) SnapshotSchedule() *cronexpr.Expression {
	return config.snapshotSchedule
}
