package provider

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dreitier/treefactor/config"
	"github.com/dreitier/treefactor/storage"
	"github.com/stretchr/testify/assert"
)

// exerciseStore runs the behaviour every Store has to provide.
func exerciseStore(t *testing.T, sut storage.Store) {
	assertion := assert.New(t)
	ctx := context.Background()

	initial := storage.DocumentKey("session one", storage.InitialTreeDocument)
	edited := storage.DocumentKey("session one", storage.EditedTreeDocument)
	other := storage.DocumentKey("session-two", storage.InitialTreeDocument)

	_, err := sut.Load(ctx, initial)
	assertion.ErrorIs(err, storage.ErrNotFound)

	assertion.NoError(sut.Save(ctx, initial, []byte(`["initial"]`)))
	assertion.NoError(sut.Save(ctx, edited, []byte(`["edited"]`)))
	assertion.NoError(sut.Save(ctx, other, []byte(`["other"]`)))
	assertion.NoError(sut.Save(ctx, edited, []byte(`["edited again"]`)))

	data, err := sut.Load(ctx, edited)
	assertion.NoError(err)
	assertion.Equal(`["edited again"]`, string(data))

	keys, err := sut.List(ctx, storage.SessionPrefix("session one"))
	assertion.NoError(err)
	assertion.Equal([]string{edited, initial}, keys)

	keys, err = sut.List(ctx, "")
	assertion.NoError(err)
	assertion.Equal([]string{"session one", "session-two"}, storage.Sessions(keys))

	assertion.NoError(sut.Delete(ctx, edited))
	assertion.NoError(sut.Delete(ctx, edited), "deleting twice is fine")

	_, err = sut.Load(ctx, edited)
	assertion.ErrorIs(err, storage.ErrNotFound)

	assertion.NoError(sut.Close())
}

func Test_LocalStore(t *testing.T) {
	sut, err := NewLocalStore(filepath.Join(t.TempDir(), "documents"))
	assert.NoError(t, err)

	exerciseStore(t, sut)
}

func Test_LocalStore_rejectsEscapingKeys(t *testing.T) {
	assertion := assert.New(t)
	sut, _ := NewLocalStore(t.TempDir())

	assertion.Error(sut.Save(context.Background(), "../outside", nil))
	assertion.Error(sut.Save(context.Background(), "a//b", nil))
	_, err := sut.Load(context.Background(), "")
	assertion.Error(err)
}

func Test_SqlStore_sqlite(t *testing.T) {
	sut, err := NewSqlStore(context.Background(), DriverSqlite, filepath.Join(t.TempDir(), "documents.db"))
	assert.NoError(t, err)

	exerciseStore(t, sut)
}

func Test_SqlStore_unsupportedDriver(t *testing.T) {
	_, err := NewSqlStore(context.Background(), "oracle", "somewhere")

	assert.ErrorContains(t, err, "unsupported")
}

func Test_MemoryStore(t *testing.T) {
	exerciseStore(t, storage.NewMemoryStore())
}

func Test_NewStore_createsConfiguredType(t *testing.T) {
	assertion := assert.New(t)
	ctx := context.Background()

	store, err := NewStore(ctx, &config.StorageConfiguration{Type: config.StorageMemory})
	assertion.NoError(err)
	assertion.IsType(&storage.MemoryStore{}, store)

	store, err = NewStore(ctx, &config.StorageConfiguration{Type: config.StorageLocal, Directory: t.TempDir()})
	assertion.NoError(err)
	assertion.IsType(&LocalStore{}, store)

	store, err = NewStore(ctx, &config.StorageConfiguration{
		Type:   config.StorageSql,
		Driver: DriverSqlite,
		Dsn:    filepath.Join(t.TempDir(), "trees.db"),
	})
	assertion.NoError(err)
	assertion.IsType(&SqlStore{}, store)
	assertion.NoError(store.Close())

	store, err = NewStore(ctx, &config.StorageConfiguration{Type: config.StorageS3, Bucket: "trees", Region: "eu-central-1"})
	assertion.NoError(err, "the client is created lazily, no request is sent")
	assertion.IsType(&S3Store{}, store)

	_, err = NewStore(ctx, &config.StorageConfiguration{Type: config.StorageLocal})
	assertion.Error(err)
}

func Test_isNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(context.Canceled))
}
