package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

type Config struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// Load resolves the default AWS configuration (credentials chain, Signature
// V4 signing) pinned to the configured region.
func (c *Config) Load(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(c.Region))
}
