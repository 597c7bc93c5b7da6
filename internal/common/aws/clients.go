// internal/common/aws/clients.go
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// LoadConfig resolves credentials from the default chain for region.
func LoadConfig(ctx context.Context, region string) (awssdk.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return awssdk.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewNotificationClients builds the SES and SNS clients used to notify the
// sales team about new leads.
func NewNotificationClients(ctx context.Context, region string) (*ses.Client, *sns.Client, error) {
	cfg, err := LoadConfig(ctx, region)
	if err != nil {
		return nil, nil, err
	}
	return ses.NewFromConfig(cfg), sns.NewFromConfig(cfg), nil
}
