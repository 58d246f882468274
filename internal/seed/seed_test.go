package seed

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northstar-insurance/server/internal/agent/model"
)

func TestPoliciesShape(t *testing.T) {
	policies := NewGenerator(1).Policies()

	require.Len(t, policies, NumPolicies)
	for id, p := range policies {
		assert.Equal(t, id, p.PolicyID)
		assert.True(t, strings.HasPrefix(id, "AUTO-") || strings.HasPrefix(id, "HOME-"), "id %s", id)
		assert.Contains(t, states, p.State)
		assert.Contains(t, []string{"auto", "home"}, p.PolicyType)
		assert.Positive(t, p.CoverageLimit)
		assert.Positive(t, p.Deductible)

		if strings.HasPrefix(id, "AUTO-") {
			assert.Equal(t, "auto", p.PolicyType)
		} else {
			assert.Equal(t, "home", p.PolicyType)
		}
	}
}

func TestClaimsShape(t *testing.T) {
	g := NewGenerator(1)
	policies := g.Policies()
	claims := g.Claims(policies)

	require.Len(t, claims, NumClaims)

	missingCount := 0
	for _, c := range claims {
		assert.True(t, strings.HasPrefix(c.ClaimID, "CLM-"), "id %s", c.ClaimID)
		assert.Len(t, c.ClaimID, len("CLM-")+8)

		policy, ok := policies[c.PolicyID]
		require.True(t, ok, "claim %s references unknown policy %s", c.ClaimID, c.PolicyID)
		assert.Equal(t, policy.State, c.State)
		assert.Contains(t, lossTypes[policy.PolicyType], c.LossType)

		required := DocumentRules[c.LossType]
		assert.LessOrEqual(t, len(c.DocumentsSubmitted), len(required))
		if len(c.DocumentsSubmitted) < len(required) {
			missingCount++
		}
	}

	// roughly 30% of claims are incomplete
	assert.Greater(t, missingCount, NumClaims/10)
	assert.Less(t, missingCount, NumClaims/2)
}

func TestGeneratorIsDeterministic(t *testing.T) {
	first := NewGenerator(7).Policies()
	second := NewGenerator(7).Policies()
	assert.Equal(t, first, second)
}

type fakeUploader struct {
	objects map[string][]byte
}

func (f *fakeUploader) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	raw, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(params.Key)] = raw
	return &s3.PutObjectOutput{}, nil
}

func TestUploadWritesFullDataset(t *testing.T) {
	uploader := &fakeUploader{}
	cfg := model.DatasetConfig{Bucket: "test-bucket", DataPrefix: "data", ClaimsPrefix: "claims"}

	require.NoError(t, Upload(context.Background(), uploader, cfg, NewGenerator(1)))

	// reference objects plus one object per claim
	assert.Len(t, uploader.objects, 2+NumClaims)

	var policies map[string]model.Policy
	require.NoError(t, json.Unmarshal(uploader.objects["data/policies.json"], &policies))
	assert.Len(t, policies, NumPolicies)

	var rules map[string][]string
	require.NoError(t, json.Unmarshal(uploader.objects["data/document_rules.json"], &rules))
	assert.Equal(t, DocumentRules, rules)

	claimKeys := 0
	for key := range uploader.objects {
		if strings.HasPrefix(key, "claims/CLM-") {
			claimKeys++
		}
	}
	assert.Equal(t, NumClaims, claimKeys)
}
