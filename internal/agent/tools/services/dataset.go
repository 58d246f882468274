package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/northstar-insurance/server/internal/agent/model"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// ErrNotFound marks a dataset object that does not exist.
var ErrNotFound = errors.New("dataset object not found")

// ObjectGetter is the slice of the S3 client the dataset reads through.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Dataset reads the insurance reference data from S3. Reference objects
// (policies, document rules) go through an explicit expiring cache with
// time-based invalidation; per-claim objects are always fetched fresh.
type Dataset struct {
	client ObjectGetter
	cfg    model.DatasetConfig
	cache  *expirable.LRU[string, []byte]
}

func NewDataset(client ObjectGetter, cfg model.DatasetConfig) *Dataset {
	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	return &Dataset{
		client: client,
		cfg:    cfg,
		cache:  expirable.NewLRU[string, []byte](cfg.CacheSize, nil, ttl),
	}
}

// Policies returns the full policy dataset keyed by policy id.
func (d *Dataset) Policies(ctx context.Context) (map[string]model.Policy, error) {
	raw, err := d.cached(ctx, path.Join(d.cfg.DataPrefix, "policies.json"))
	if err != nil {
		return nil, err
	}
	var policies map[string]model.Policy
	if err := json.Unmarshal(raw, &policies); err != nil {
		return nil, fmt.Errorf("decode policies dataset: %w", err)
	}
	return policies, nil
}

// DocumentRules returns the required-documents list per loss type.
func (d *Dataset) DocumentRules(ctx context.Context) (map[string][]string, error) {
	raw, err := d.cached(ctx, path.Join(d.cfg.DataPrefix, "document_rules.json"))
	if err != nil {
		return nil, err
	}
	var rules map[string][]string
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("decode document rules: %w", err)
	}
	return rules, nil
}

// Claim fetches one claim object by id.
func (d *Dataset) Claim(ctx context.Context, claimID string) (model.Claim, error) {
	raw, err := d.object(ctx, path.Join(d.cfg.ClaimsPrefix, claimID+".json"))
	if err != nil {
		return model.Claim{}, err
	}
	var claim model.Claim
	if err := json.Unmarshal(raw, &claim); err != nil {
		return model.Claim{}, fmt.Errorf("decode claim %s: %w", claimID, err)
	}
	return claim, nil
}

func (d *Dataset) cached(ctx context.Context, key string) ([]byte, error) {
	if raw, ok := d.cache.Get(key); ok {
		return raw, nil
	}
	raw, err := d.object(ctx, key)
	if err != nil {
		return nil, err
	}
	d.cache.Add(key, raw)
	return raw, nil
}

func (d *Dataset) object(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		logx.Error().Err(err).Str("key", key).Msg("Failed to fetch dataset object")
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	logx.Debug().Str("key", key).Dur("latency", time.Since(start)).Int("bytes", len(raw)).Msg("Dataset object fetched")
	return raw, nil
}
