package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients bundles the service clients the portal talks to.
type AWSClients struct {
	Dynamo  *dynamodb.Client
	S3      *s3.Client
	Secrets *secretsmanager.Client
	SQS     *sqs.Client
}

// NewAWSClients loads the default AWS configuration and constructs service
// clients. A non-empty endpoint (e.g. http://localstack:4566) redirects all
// services, which also forces path-style S3 addressing.
func NewAWSClients(ctx context.Context, region, endpoint string) (*AWSClients, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpoint,
				HostnameImmutable: true,
				PartitionID:       "aws",
			}, nil
		})
		opts = append(opts, awscfg.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &AWSClients{
		Dynamo: dynamodb.NewFromConfig(cfg),
		S3: s3.NewFromConfig(cfg, func(o *s3.Options) {
			if endpoint != "" {
				o.UsePathStyle = true
			}
		}),
		Secrets: secretsmanager.NewFromConfig(cfg),
		SQS:     sqs.NewFromConfig(cfg),
	}, nil
}
