package config

type StorageType string

const (
	StorageMemory StorageType = "memory"
	StorageLocal  StorageType = "local"
	StorageS3     StorageType = "s3"
	StorageSql    StorageType = "sql"

	DefaultRegion = "eu-central-1"
)

// StorageConfiguration is the transformed outcome of the `storage:` section.
type StorageConfiguration struct {
	Type StorageType

	// local
	Directory string

	// s3
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Token          string
	ForcePathStyle bool
	RoleArn        string

	// sql; Driver is "sqlite3" or "postgres"
	Driver string
	Dsn    string
}
