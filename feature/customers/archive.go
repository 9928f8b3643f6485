package customers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"customer-sync/core/reconcile"
	"customer-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrNoReport is returned when the archive holds no report yet.
var ErrNoReport = errors.New("no archived report")

// reportTimeLayout sorts lexically in time order.
const reportTimeLayout = "20060102T150405.000000000Z"

// appliedSuffix marks reports of passes that ran against the directory.
const appliedSuffix = ".applied.json"

// Report is one archived reconciliation pass.
type Report struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Source      string                   `json:"source"`
	Applied     bool                     `json:"applied"`
	Executed    int                      `json:"executed"`
	Errors      []string                 `json:"errors,omitempty"`
	Plan        *reconcile.ReconcilePlan `json:"plan"`
}

// Archive stores reports in object storage.
type Archive struct {
	client storage.Client
	bucket string
	prefix string
	retain int
}

// NewArchive creates an archive writing under bucket/prefix. It keeps the
// newest retain applied reports and, separately, the newest retain report-only
// ones, so previews never push the baseline out. A retain of zero keeps all.
func NewArchive(client storage.Client, bucket, prefix string, retain int) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
		retain: retain,
	}
}

// EnsureBucket creates the report bucket if needed.
func (a *Archive) EnsureBucket(ctx context.Context, region string) error {
	return storage.EnsureBucket(ctx, a.client, a.bucket, region)
}

// Save uploads the report and prunes old ones. It returns the object name.
func (a *Archive) Save(ctx context.Context, report *Report) (string, error) {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	name := a.prefix + "/" + report.GeneratedAt.UTC().Format(reportTimeLayout)
	if report.Applied {
		name += appliedSuffix
	} else {
		name += ".json"
	}
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}

	if err := a.prune(ctx); err != nil {
		return name, err
	}
	return name, nil
}

// List returns report object names, oldest first.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    a.prefix + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Latest returns the newest report.
func (a *Archive) Latest(ctx context.Context) (*Report, error) {
	names, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoReport
	}
	return a.Get(ctx, names[len(names)-1])
}

// LatestApplied returns the newest report whose plan was applied. Report-only
// passes carry placeholder ids and never seed a baseline.
func (a *Archive) LatestApplied(ctx context.Context) (*Report, error) {
	names, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(names) - 1; i >= 0; i-- {
		if !strings.HasSuffix(names[i], appliedSuffix) {
			continue
		}
		report, err := a.Get(ctx, names[i])
		if err != nil {
			return nil, err
		}
		if report.Applied {
			return report, nil
		}
	}
	return nil, ErrNoReport
}

// Get downloads and decodes a report.
func (a *Archive) Get(ctx context.Context, name string) (*Report, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", name, err)
	}
	defer obj.Close()

	var report Report
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", name, err)
	}
	return &report, nil
}

func (a *Archive) prune(ctx context.Context) error {
	if a.retain <= 0 {
		return nil
	}
	names, err := a.List(ctx)
	if err != nil {
		return err
	}

	var applied, previews []string
	for _, name := range names {
		if strings.HasSuffix(name, appliedSuffix) {
			applied = append(applied, name)
		} else {
			previews = append(previews, name)
		}
	}

	var stale []string
	stale = append(stale, a.overflow(applied)...)
	stale = append(stale, a.overflow(previews)...)

	var errs []error
	for _, name := range stale {
		if err := a.client.RemoveObject(ctx, a.bucket, name, minio.RemoveObjectOptions{}); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove report %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// overflow returns the oldest names beyond the retention limit.
func (a *Archive) overflow(names []string) []string {
	if len(names) <= a.retain {
		return nil
	}
	return names[:len(names)-a.retain]
}
