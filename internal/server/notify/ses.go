package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	sc "github.com/dmitrijs2005/usuarios/internal/server/config"
	"github.com/dmitrijs2005/usuarios/internal/logging"
)

const charset = "UTF-8"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newSESClientFromConfig = func(cfg aws.Config, optFns ...func(*sesv2.Options)) sesAPI {
		return sesv2.NewFromConfig(cfg, optFns...)
	}
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers messages through Amazon SES (API v2).
type SESSender struct {
	client sesAPI
}

// NewSESSender builds an SES client from cfg. Static credentials are used
// when both key and secret are configured, otherwise the default AWS chain.
func NewSESSender(ctx context.Context, cfg *sc.Config) (*SESSender, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.SESRegion),
	}
	if cfg.SESAccessKey != "" && cfg.SESSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.SESAccessKey, cfg.SESSecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newSESClientFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.SESBaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SESBaseEndpoint)
		}
	})

	return &SESSender{client: client}, nil
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String(charset)},
				},
			},
		},
	})
	return err
}

// NewSender picks the delivery driver named by cfg.MailDriver.
func NewSender(ctx context.Context, cfg *sc.Config, log logging.Logger) (Sender, error) {
	switch cfg.MailDriver {
	case sc.MailDriverLog, "":
		return NewLogSender(log), nil
	case sc.MailDriverSES:
		return NewSESSender(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}
