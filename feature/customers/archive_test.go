package customers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"customer-sync/core/customer"
	"customer-sync/core/reconcile"
	"customer-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// objectList returns a closed channel carrying the given keys.
func objectList(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		ch <- minio.ObjectInfo{Key: k}
	}
	close(ch)
	return ch
}

// memoryStore is an in-memory storage.Client.
type memoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return true, nil
}

func (m *memoryStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return nil
}

func (m *memoryStore) PutObject(ctx context.Context, bucket, name string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+name] = data
	return minio.UploadInfo{Key: name, Size: int64(len(data))}, nil
}

func (m *memoryStore) GetObject(ctx context.Context, bucket, name string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+name]
	if !ok {
		return nil, errors.New("object not found: " + name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	m.mu.Lock()
	var keys []string
	for k := range m.objects {
		key := strings.TrimPrefix(k, bucket+"/")
		if key != k && strings.HasPrefix(key, opts.Prefix) {
			keys = append(keys, key)
		}
	}
	m.mu.Unlock()
	sort.Strings(keys)
	return objectList(keys...)
}

func (m *memoryStore) RemoveObject(ctx context.Context, bucket, name string, opts minio.RemoveObjectOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, bucket+"/"+name)
	return nil
}

func encodedReport(t *testing.T, applied bool, results ...customer.Customer) io.ReadCloser {
	data, err := json.Marshal(&Report{Applied: applied, Plan: &reconcile.ReconcilePlan{Results: results}})
	require.NoError(t, err)
	return io.NopCloser(bytes.NewReader(data))
}

func TestArchive_Save(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket", "reports/customers/", 0)
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	client.On("PutObject", mock.Anything, "bucket", "reports/customers/20260301T123000.000000000Z.json",
		mock.Anything, mock.Anything, mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == "application/json"
		})).Return(minio.UploadInfo{}, nil)

	name, err := archive.Save(context.Background(), &Report{GeneratedAt: at, Plan: &reconcile.ReconcilePlan{}})
	require.NoError(t, err)
	assert.Equal(t, "reports/customers/20260301T123000.000000000Z.json", name)
	client.AssertExpectations(t)
	client.AssertNotCalled(t, "ListObjects", mock.Anything, mock.Anything, mock.Anything)
}

func TestArchive_SaveApplied(t *testing.T) {
	client := new(mocks.Client)
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	client.On("PutObject", mock.Anything, "bucket", "reports/20260301T123000.000000000Z.applied.json",
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	name, err := NewArchive(client, "bucket", "reports", 0).Save(context.Background(), &Report{GeneratedAt: at, Applied: true})
	require.NoError(t, err)
	assert.Equal(t, "reports/20260301T123000.000000000Z.applied.json", name)
}

func TestArchive_SaveUploadFails(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("access denied"))

	_, err := NewArchive(client, "bucket", "reports", 0).Save(context.Background(), &Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestArchive_SavePrunes(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket", "reports", 2)

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, "bucket", minio.ListObjectsOptions{Prefix: "reports/", Recursive: true}).
		Return(objectList("reports/c.json", "reports/a.json", "reports/b.json"))
	client.On("RemoveObject", mock.Anything, "bucket", "reports/a.json", mock.Anything).Return(nil)

	_, err := archive.Save(context.Background(), &Report{})
	require.NoError(t, err)
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "RemoveObject", 1)
}

func TestArchive_PruneKeepsApplied(t *testing.T) {
	client := new(mocks.Client)
	archive := NewArchive(client, "bucket", "reports", 2)

	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
		Return(objectList("reports/1.applied.json", "reports/2.json", "reports/3.applied.json",
			"reports/4.json", "reports/5.json", "reports/6.json"))
	client.On("RemoveObject", mock.Anything, "bucket", mock.Anything, mock.Anything).Return(nil)

	_, err := archive.Save(context.Background(), &Report{})
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "RemoveObject", 2)
	client.AssertCalled(t, "RemoveObject", mock.Anything, "bucket", "reports/2.json", mock.Anything)
	client.AssertCalled(t, "RemoveObject", mock.Anything, "bucket", "reports/4.json", mock.Anything)
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, "bucket", "reports/3.applied.json", mock.Anything)
}

func TestArchive_BaselineSurvivesPruning(t *testing.T) {
	ctx := context.Background()
	archive := NewArchive(newMemoryStore(), "bucket", "reports", 3)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := archive.Save(ctx, &Report{
		GeneratedAt: start,
		Applied:     true,
		Plan:        &reconcile.ReconcilePlan{Results: []customer.Customer{{CompanyID: "1", ExternalID: "L1"}}},
	})
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		_, err := archive.Save(ctx, &Report{GeneratedAt: start.Add(time.Duration(i) * time.Minute), Plan: &reconcile.ReconcilePlan{}})
		require.NoError(t, err)
	}

	names, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 4)

	report, err := archive.LatestApplied(ctx)
	require.NoError(t, err)
	assert.Equal(t, "L1", report.Plan.Results[0].ExternalID)
}

func TestArchive_List(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
		Return(objectList("reports/2.json", "reports/notes.txt", "reports/1.json"))

	names, err := NewArchive(client, "bucket", "reports", 0).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/1.json", "reports/2.json"}, names)
}

func TestArchive_ListError(t *testing.T) {
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Err: errors.New("bucket gone")}
	close(ch)

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	_, err := NewArchive(client, "bucket", "reports", 0).List(context.Background())
	assert.ErrorContains(t, err, "bucket gone")
}

func TestArchive_Latest(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
		Return(objectList("reports/1.json", "reports/2.json"))
	client.On("GetObject", mock.Anything, "bucket", "reports/2.json", mock.Anything).
		Return(encodedReport(t, false, customer.Customer{Name: "Acme", CompanyID: "1", ExternalID: "L1", Status: customer.StatusAdded}), nil)

	report, err := NewArchive(client, "bucket", "reports", 0).Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Plan.Results, 1)
	assert.Equal(t, "L1", report.Plan.Results[0].ExternalID)
}

func TestArchive_LatestApplied(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).
		Return(objectList("reports/1.applied.json", "reports/2.applied.json", "reports/3.json"))
	client.On("GetObject", mock.Anything, "bucket", "reports/2.applied.json", mock.Anything).
		Return(encodedReport(t, true, customer.Customer{CompanyID: "1", ExternalID: "L1"}), nil)

	report, err := NewArchive(client, "bucket", "reports", 0).LatestApplied(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Applied)
	assert.Equal(t, "L1", report.Plan.Results[0].ExternalID)
	client.AssertNotCalled(t, "GetObject", mock.Anything, "bucket", "reports/3.json", mock.Anything)
	client.AssertNotCalled(t, "GetObject", mock.Anything, "bucket", "reports/1.applied.json", mock.Anything)
}

func TestArchive_LatestAppliedNone(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectList("reports/1.json"))

	_, err := NewArchive(client, "bucket", "reports", 0).LatestApplied(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)
	client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestArchive_LatestEmpty(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectList())

	_, err := NewArchive(client, "bucket", "reports", 0).Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestArchive_GetCorrupt(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "bucket", "reports/1.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader("{not json")), nil)

	_, err := NewArchive(client, "bucket", "reports", 0).Get(context.Background(), "reports/1.json")
	assert.ErrorContains(t, err, "failed to decode report reports/1.json")
}
