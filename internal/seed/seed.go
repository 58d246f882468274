package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/northstar-insurance/server/internal/agent/model"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// Dataset sizes mirror the reference environment.
const (
	NumPolicies = 50
	NumClaims   = 300
)

var states = []string{"FL", "CA", "TX", "NY", "IL"}

var lossTypes = map[string][]string{
	"auto": {"auto_collision", "auto_theft"},
	"home": {"home_fire", "water_damage"},
}

// DocumentRules maps each loss type to its required documents.
var DocumentRules = map[string][]string{
	"auto_collision": {"photo_front_damage.jpg", "repair_invoice.pdf"},
	"auto_theft":     {"police_report.pdf"},
	"home_fire":      {"fire_report.pdf", "damage_photos.zip"},
	"water_damage":   {"plumber_report.pdf", "damage_photos.zip"},
}

var firstNames = []string{"Ava", "Noah", "Mia", "Liam", "Zoe", "Ethan", "Ruby", "Owen", "Ivy", "Caleb"}
var lastNames = []string{"Harper", "Brooks", "Delgado", "Mercer", "Okafor", "Lindqvist", "Tanaka", "Reyes", "Whitfield", "Novak"}

// Generator produces deterministic synthetic reference data for a fixed
// seed.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Policies generates the policy dataset keyed by policy id.
func (g *Generator) Policies() map[string]model.Policy {
	policies := make(map[string]model.Policy, NumPolicies)
	for i := 0; i < NumPolicies; i++ {
		prefix := "AUTO"
		policyType := "auto"
		if g.rng.Intn(2) == 1 {
			prefix = "HOME"
			policyType = "home"
		}
		policyID := fmt.Sprintf("%s-%d", prefix, 10000+i)

		policies[policyID] = model.Policy{
			PolicyID:      policyID,
			CustomerName:  g.name(),
			State:         states[g.rng.Intn(len(states))],
			CoverageLimit: []int{10000, 15000, 25000, 50000}[g.rng.Intn(4)],
			Deductible:    []int{500, 1000, 2000}[g.rng.Intn(3)],
			PolicyType:    policyType,
			Active:        g.rng.Intn(4) != 3,
		}
	}
	return policies
}

// Claims generates claims drawn against the given policies. Roughly 30% of
// claims are missing their last required document.
func (g *Generator) Claims(policies map[string]model.Policy) []model.Claim {
	ids := make([]string, 0, len(policies))
	for id := range policies {
		ids = append(ids, id)
	}
	// map order would break determinism
	sort.Strings(ids)

	claims := make([]model.Claim, 0, NumClaims)
	for i := 0; i < NumClaims; i++ {
		policy := policies[ids[g.rng.Intn(len(ids))]]
		types := lossTypes[policy.PolicyType]
		lossType := types[g.rng.Intn(len(types))]

		required := DocumentRules[lossType]
		submitted := required
		if g.rng.Float64() >= 0.7 {
			submitted = required[:len(required)-1]
		}

		claims = append(claims, model.Claim{
			ClaimID:            "CLM-" + strings.ToUpper(uuid.NewString()[:8]),
			PolicyID:           policy.PolicyID,
			LossType:           lossType,
			State:              policy.State,
			EstimatedDamage:    1000 + g.rng.Intn(59000),
			DocumentsSubmitted: submitted,
			Status:             "submitted",
		})
	}
	return claims
}

func (g *Generator) name() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

// Uploader is the slice of the S3 client the seeder writes through.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Upload generates the full dataset and writes it to the configured bucket.
func Upload(ctx context.Context, client Uploader, cfg model.DatasetConfig, g *Generator) error {
	policies := g.Policies()
	if err := putJSON(ctx, client, cfg.Bucket, path.Join(cfg.DataPrefix, "policies.json"), policies); err != nil {
		return err
	}
	if err := putJSON(ctx, client, cfg.Bucket, path.Join(cfg.DataPrefix, "document_rules.json"), DocumentRules); err != nil {
		return err
	}

	for _, claim := range g.Claims(policies) {
		key := path.Join(cfg.ClaimsPrefix, claim.ClaimID+".json")
		if err := putJSON(ctx, client, cfg.Bucket, key, claim); err != nil {
			return err
		}
	}

	logx.Info().Str("bucket", cfg.Bucket).Int("policies", NumPolicies).Int("claims", NumClaims).Msg("Dataset uploaded")
	return nil
}

func putJSON(ctx context.Context, client Uploader, bucket, key string, v any) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	logx.Debug().Str("key", key).Msg("Uploaded")
	return nil
}
