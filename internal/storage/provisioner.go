package storage

import (
	"context"
	"fmt"

	"github.com/filegate/service/internal/apperr"
)

// Provisioner maps application ids to their exclusive buckets and guarantees
// a bucket exists before first use. Creation is idempotent: two requests
// racing to provision the same app's bucket both succeed.
type Provisioner struct {
	store      Storage
	prefix     string
	autoCreate bool
}

// NewProvisioner creates a Provisioner. When autoCreate is false a missing
// bucket is an operator problem, not something the gateway fixes.
func NewProvisioner(store Storage, prefix string, autoCreate bool) *Provisioner {
	return &Provisioner{store: store, prefix: prefix, autoCreate: autoCreate}
}

// BucketFor returns the exclusive bucket name for an application id.
func (p *Provisioner) BucketFor(appID int64) string {
	return fmt.Sprintf("%s-app-%d", p.prefix, appID)
}

// Ensure guarantees the bucket exists, creating it when auto-creation is
// enabled. Probe failures are reported as unavailable without attempting
// creation.
func (p *Provisioner) Ensure(ctx context.Context, bucket string) error {
	exists, err := p.store.BucketExists(ctx, bucket)
	if err != nil {
		return apperr.Unavailable("storage unavailable")
	}
	if exists {
		return nil
	}
	if !p.autoCreate {
		return apperr.Unavailable("bucket not found; contact administrator")
	}
	if err := p.store.MakeBucket(ctx, bucket); err != nil {
		return apperr.Unavailable("storage unavailable")
	}
	return nil
}
