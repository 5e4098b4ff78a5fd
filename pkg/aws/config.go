package aws

import (
	"context"
	"fmt"
	"os"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const defaultRegion = "us-east-1"

// localEnv is the part of the environment that redirects the SDK to a local
// AWS emulator such as LocalStack.
type localEnv struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

func localEnvFromOS() localEnv {
	return localEnv{
		Region:    os.Getenv("AWS_REGION"),
		Endpoint:  firstNonEmpty(os.Getenv("AWS_ENDPOINT"), os.Getenv("AWS_SQS_ENDPOINT"), os.Getenv("AWS_S3_ENDPOINT")),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

// LoadAWSConfig loads the shared AWS config. With AWS_ENDPOINT set every
// client targets that URL and, when keys are given, signs with static
// credentials instead of walking the default provider chain.
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, loadOptions(localEnvFromOS())...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

func loadOptions(env localEnv) []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if env.Region != "" {
		opts = append(opts, config.WithRegion(env.Region))
	}
	if env.Endpoint == "" {
		return opts
	}

	region := env.Region
	if region == "" {
		region = defaultRegion
		opts = append(opts, config.WithRegion(region))
	}
	if env.AccessKey != "" && env.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(env.AccessKey, env.SecretKey, ""),
		))
	}
	opts = append(opts, config.WithEndpointResolverWithOptions(endpointResolver(env.Endpoint, region)))
	return opts
}

func endpointResolver(endpoint, signingRegion string) sdkaws.EndpointResolverWithOptions {
	return sdkaws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (sdkaws.Endpoint, error) {
		return sdkaws.Endpoint{
			URL:               endpoint,
			SigningRegion:     signingRegion,
			HostnameImmutable: true,
		}, nil
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
