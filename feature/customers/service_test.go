package customers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"customer-sync/core/customer"
	"customer-sync/core/directory"
	"customer-sync/core/metrics"
	"customer-sync/core/reconcile"
	"customer-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// staticSource returns a fixed list.
type staticSource struct {
	name    string
	records []customer.Customer
	err     error
	loads   atomic.Int32
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Load(ctx context.Context) ([]customer.Customer, error) {
	s.loads.Add(1)
	return s.records, s.err
}

// flakyDirectory fails Add after a number of successes and Delete for chosen ids.
type flakyDirectory struct {
	*directory.MemoryDirectory
	addsLeft  int
	failIDs   map[string]bool
	failQuery error
}

func (d *flakyDirectory) Add(ctx context.Context, name, fax string) (string, error) {
	if d.addsLeft == 0 {
		return "", &directory.RemoteError{Op: "add", StatusCode: 3100, Message: "name already in use"}
	}
	d.addsLeft--
	return d.MemoryDirectory.Add(ctx, name, fax)
}

func (d *flakyDirectory) QueryAll(ctx context.Context) ([]customer.Customer, error) {
	if d.failQuery != nil {
		return nil, d.failQuery
	}
	return d.MemoryDirectory.QueryAll(ctx)
}

func (d *flakyDirectory) Delete(ctx context.Context, externalID string) error {
	if d.failIDs[externalID] {
		return directory.ErrNoResponse
	}
	return d.MemoryDirectory.Delete(ctx, externalID)
}

func newTestService(dir directory.Directory, src reconcile.Source) *Service {
	return NewService(Deps{
		Engine:    reconcile.NewEngine(zap.NewNop()),
		Source:    src,
		Directory: dir,
		Metrics:   metrics.New(),
		Logger:    zap.NewNop(),
		Config:    testConfig(),
	})
}

var applyAll = reconcile.ReconcileOptions{DoAdd: true, DoDelete: true, Confirmed: true}

func TestService_ReconcileApply(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemoryDirectory(directory.MaxFieldLength)
	svc := newTestService(dir, nil)

	first, err := svc.Reconcile(ctx, []customer.Customer{
		customer.New("Acme", "555-0101", "1"),
		customer.New("Globex", "", "2"),
	}, applyAll)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Executed)
	assert.Equal(t, 2, first.Plan.Summary.Added)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, listed[0].ExternalID, first.Plan.Results[0].ExternalID)

	second, err := svc.Reconcile(ctx, []customer.Customer{
		customer.New("Globex Corp", "", "2"),
	}, applyAll)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Executed)
	assert.Equal(t, customer.StatusMissing, second.Plan.Results[0].Status)
	assert.Equal(t, customer.StatusDifferent, second.Plan.Results[1].Status)

	listed, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Globex", listed[0].Name)
}

func TestService_ReconcileFromSource(t *testing.T) {
	src := &staticSource{name: "static-reconcile", records: []customer.Customer{customer.New("Acme", "", "1")}}
	defer reconcile.InvalidateCache(src.name)
	svc := newTestService(nil, src)

	result, err := svc.Reconcile(context.Background(), nil, reconcile.ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Plan.Summary.Added)
	assert.Equal(t, 0, result.Executed)
	assert.Equal(t, int32(1), src.loads.Load())
	assert.Empty(t, svc.Snapshot())
}

func TestService_ReconcileEmptyCandidates(t *testing.T) {
	src := &staticSource{name: "static-empty"}
	svc := newTestService(directory.NewMemoryDirectory(20), src)

	_, err := svc.Reconcile(context.Background(), []customer.Customer{customer.New("Acme", "", "1")}, applyAll)
	require.NoError(t, err)

	result, err := svc.Reconcile(context.Background(), []customer.Customer{}, reconcile.ReconcileOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Plan.Summary.Missing)
	assert.Equal(t, int32(0), src.loads.Load())
}

func TestService_ReconcileErrors(t *testing.T) {
	t.Run("NoSource", func(t *testing.T) {
		_, err := newTestService(nil, nil).Reconcile(context.Background(), nil, reconcile.ReconcileOptions{})
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("SourceFails", func(t *testing.T) {
		src := &staticSource{name: "static-fails", err: errors.New("db down")}
		_, err := newTestService(nil, src).Reconcile(context.Background(), nil, reconcile.ReconcileOptions{})
		assert.EqualError(t, err, "db down")
	})

	t.Run("DuplicateKeyTouchesNothing", func(t *testing.T) {
		dir := directory.NewMemoryDirectory(directory.MaxFieldLength)
		svc := newTestService(dir, nil)

		result, err := svc.Reconcile(context.Background(), []customer.Customer{
			customer.New("A", "", "1"),
			customer.New("B", "", "1"),
		}, applyAll)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, reconcile.ErrDuplicateKey)

		listed, err := dir.QueryAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, listed)
		assert.Empty(t, svc.Snapshot())
	})
}

func TestService_ReconcilePartialFailure(t *testing.T) {
	dir := &flakyDirectory{MemoryDirectory: directory.NewMemoryDirectory(20), addsLeft: 1}
	svc := newTestService(dir, nil)

	result, err := svc.Reconcile(context.Background(), []customer.Customer{
		customer.New("Acme", "", "1"),
		customer.New("Acme", "", "2"),
	}, applyAll)
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrRemoteRejected)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Executed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "failed to add 2")
	assert.Empty(t, result.Plan.Results[1].ExternalID)
	assert.Len(t, svc.Snapshot(), 1)
}

func TestService_FailedAddRetried(t *testing.T) {
	ctx := context.Background()
	dir := &flakyDirectory{MemoryDirectory: directory.NewMemoryDirectory(20), addsLeft: 1}
	svc := newTestService(dir, nil)
	candidates := []customer.Customer{
		customer.New("Acme", "", "1"),
		customer.New("Globex", "", "2"),
	}

	_, err := svc.Reconcile(ctx, candidates, applyAll)
	require.Error(t, err)

	dir.addsLeft = -1
	result, err := svc.Reconcile(ctx, candidates, applyAll)
	require.NoError(t, err)
	assert.Equal(t, []customer.Status{customer.StatusUnchanged, customer.StatusAdded},
		[]customer.Status{result.Plan.Results[0].Status, result.Plan.Results[1].Status})
	assert.Equal(t, 1, result.Executed)

	listed, err := dir.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// Removing the retried key deletes the real directory entry
	result, err = svc.Reconcile(ctx, candidates[:1], applyAll)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)
	listed, err = dir.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Acme", listed[0].Name)
}

func TestService_PreviewKeepsBaseline(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemoryDirectory(20)
	svc := newTestService(dir, nil)
	candidates := []customer.Customer{customer.New("Acme", "", "1")}

	for _, opts := range []reconcile.ReconcileOptions{
		{},
		{DoAdd: true, DoDelete: true},
		{DoAdd: true, DoDelete: true, Confirmed: true, DryRun: true},
	} {
		preview, err := svc.Reconcile(ctx, candidates, opts)
		require.NoError(t, err)
		assert.Equal(t, 0, preview.Executed)
		assert.Equal(t, customer.StatusAdded, preview.Plan.Results[0].Status)
		assert.Empty(t, svc.Snapshot())
	}

	result, err := svc.Reconcile(ctx, candidates, applyAll)
	require.NoError(t, err)
	assert.Equal(t, customer.StatusAdded, result.Plan.Results[0].Status)
	assert.Equal(t, 1, result.Executed)

	listed, err := dir.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, listed[0].ExternalID, svc.Snapshot()[0].ExternalID)

	// Dropping the key deletes by the real id, never a placeholder
	result, err = svc.Reconcile(ctx, []customer.Customer{}, applyAll)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Executed)
	listed, err = dir.QueryAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestService_BaselineSurvivesPreviews(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	dir := directory.NewMemoryDirectory(20)
	candidates := []customer.Customer{customer.New("Acme", "", "1")}

	open := func() *Service {
		svc := NewService(Deps{
			Engine:    reconcile.NewEngine(zap.NewNop()),
			Directory: dir,
			Archive:   NewArchive(store, "bucket", "reports", 3),
			Config:    testConfig(),
		})
		_, _ = svc.RestoreBaseline(ctx)
		return svc
	}

	_, err := open().Reconcile(ctx, candidates, applyAll)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := open().Reconcile(ctx, candidates, reconcile.ReconcileOptions{DoAdd: true, DoDelete: true})
		require.NoError(t, err)
	}

	svc := NewService(Deps{
		Engine:    reconcile.NewEngine(zap.NewNop()),
		Directory: dir,
		Archive:   NewArchive(store, "bucket", "reports", 3),
		Config:    testConfig(),
	})
	n, err := svc.RestoreBaseline(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	result, err := svc.Reconcile(ctx, candidates, applyAll)
	require.NoError(t, err)
	assert.Equal(t, customer.StatusUnchanged, result.Plan.Results[0].Status)
	assert.Equal(t, 0, result.Executed)

	listed, err := dir.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestService_ReconcileArchives(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "bucket", mock.MatchedBy(func(name string) bool {
		return len(name) > len("reports/") && name[:len("reports/")] == "reports/"
	}), mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	svc := NewService(Deps{
		Engine:  reconcile.NewEngine(zap.NewNop()),
		Archive: NewArchive(client, "bucket", "reports", 0),
		Config:  testConfig(),
	})

	result, err := svc.Reconcile(context.Background(), []customer.Customer{customer.New("A", "", "1")}, reconcile.ReconcileOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Report)
	client.AssertExpectations(t)
}

func TestService_AddAll(t *testing.T) {
	dir := &flakyDirectory{MemoryDirectory: directory.NewMemoryDirectory(20), addsLeft: 2}
	svc := newTestService(dir, nil)

	added, err := svc.AddAll(context.Background(), []customer.Customer{
		customer.New("A", "1", "1"),
		customer.New("B", "2", "2"),
		customer.New("C", "3", "3"),
		customer.New("D", "4", "4"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrRemoteRejected)
	require.Len(t, added, 2)
	assert.NotEmpty(t, added[0].ExternalID)
	assert.NotEqual(t, added[0].ExternalID, added[1].ExternalID)

	listed, err := dir.QueryAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestService_DeleteAll(t *testing.T) {
	ctx := context.Background()
	dir := &flakyDirectory{MemoryDirectory: directory.NewMemoryDirectory(20), addsLeft: -1, failIDs: map[string]bool{}}
	svc := newTestService(dir, nil)

	added, err := svc.AddAll(ctx, []customer.Customer{
		customer.New("A", "", "1"),
		customer.New("B", "", "2"),
		customer.New("C", "", "3"),
	})
	require.NoError(t, err)
	dir.failIDs[added[1].ExternalID] = true

	deleted, err := svc.DeleteAll(ctx)
	assert.Equal(t, 2, deleted)
	assert.ErrorIs(t, err, directory.ErrNoResponse)

	listed, err := dir.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "B", listed[0].Name)
}

func TestService_DeleteAllQueryFails(t *testing.T) {
	dir := &flakyDirectory{MemoryDirectory: directory.NewMemoryDirectory(20), failQuery: directory.ErrConnection}

	deleted, err := newTestService(dir, nil).DeleteAll(context.Background())
	assert.Equal(t, 0, deleted)
	assert.ErrorIs(t, err, directory.ErrConnection)
}

func TestService_NoDirectory(t *testing.T) {
	svc := newTestService(nil, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, ErrNoDirectory)
	_, err = svc.AddAll(ctx, nil)
	assert.ErrorIs(t, err, ErrNoDirectory)
	_, err = svc.DeleteAll(ctx)
	assert.ErrorIs(t, err, ErrNoDirectory)
	_, err = svc.Reports(ctx)
	assert.ErrorIs(t, err, ErrNoArchive)
	_, err = svc.RestoreBaseline(ctx)
	assert.ErrorIs(t, err, ErrNoArchive)
}

func TestService_RestoreBaseline(t *testing.T) {
	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "bucket", mock.Anything).Return(objectList("reports/1.applied.json"))
	client.On("GetObject", mock.Anything, "bucket", "reports/1.applied.json", mock.Anything).Return(encodedReport(t, true,
		customer.Customer{Name: "Gone", CompanyID: "9", ExternalID: "L9", Status: customer.StatusMissing},
		customer.Customer{Name: "Acme", CompanyID: "1", ExternalID: "L1", Status: customer.StatusUnchanged},
		customer.Customer{Name: "Never Created", CompanyID: "2", Status: customer.StatusAdded},
	), nil)

	svc := NewService(Deps{
		Engine:  reconcile.NewEngine(zap.NewNop()),
		Archive: NewArchive(client, "bucket", "reports", 0),
		Config:  testConfig(),
	})

	n, err := svc.RestoreBaseline(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	result, err := svc.Reconcile(context.Background(), []customer.Customer{customer.New("Acme", "", "1")}, reconcile.ReconcileOptions{})
	require.NoError(t, err)
	require.Len(t, result.Plan.Results, 1)
	assert.Equal(t, customer.StatusUnchanged, result.Plan.Results[0].Status)
	assert.Equal(t, "L1", result.Plan.Results[0].ExternalID)
}

func TestService_Verify(t *testing.T) {
	assert.NoError(t, newTestService(nil, &staticSource{name: "plain"}).Verify(context.Background()))
	assert.NoError(t, newTestService(nil, NewDBSource(setupSQLite(t), testConfig())).Verify(context.Background()))
}

func TestService_ApplyAfterReview(t *testing.T) {
	ctx := context.Background()
	dir := directory.NewMemoryDirectory(20)
	svc := newTestService(dir, nil)

	review := reconcile.ReconcileOptions{DoAdd: true, DoDelete: true}
	result, err := svc.Reconcile(ctx, []customer.Customer{customer.New("Acme", "", "1")}, review)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Executed)
	require.Len(t, result.Plan.Actions, 1)

	assert.Empty(t, svc.Snapshot())

	review.Confirmed = true
	require.NoError(t, svc.Apply(ctx, result, review))
	assert.Equal(t, 1, result.Executed)

	listed, err := dir.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, listed[0].ExternalID, svc.Snapshot()[0].ExternalID)
}
