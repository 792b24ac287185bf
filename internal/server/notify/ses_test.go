package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sc "github.com/dmitrijs2005/usuarios/internal/server/config"
	"github.com/dmitrijs2005/usuarios/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func stubAWS(t *testing.T, client sesAPI) *sesv2.Options {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newSESClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newSESClientFromConfig = origNew
	})

	var captured sesv2.Options
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}
	newSESClientFromConfig = func(cfg aws.Config, optFns ...func(*sesv2.Options)) sesAPI {
		captured.Region = cfg.Region
		captured.Credentials = cfg.Credentials
		for _, fn := range optFns {
			fn(&captured)
		}
		return client
	}
	return &captured
}

func TestNewSESSender_AppliesConfig(t *testing.T) {
	fake := &fakeSES{}
	opts := stubAWS(t, fake)

	cfg := &sc.Config{
		SESRegion:       "eu-west-1",
		SESAccessKey:    "AKIA",
		SESSecretKey:    "secret",
		SESBaseEndpoint: "http://127.0.0.1:4566",
	}
	s, err := NewSESSender(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, "eu-west-1", opts.Region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:4566", *opts.BaseEndpoint)
	require.NotNil(t, opts.Credentials)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
}

func TestNewSESSender_DefaultChainWithoutKeys(t *testing.T) {
	opts := stubAWS(t, &fakeSES{})

	_, err := NewSESSender(context.Background(), &sc.Config{SESRegion: "us-east-1"})
	require.NoError(t, err)
	assert.Nil(t, opts.BaseEndpoint)
	assert.Nil(t, opts.Credentials)
}

func TestNewSESSender_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewSESSender(context.Background(), &sc.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-fail")
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	s := &SESSender{client: fake}

	err := s.Send(context.Background(), Message{From: "f@x", To: "t@x", Subject: "subj", Body: "body"})
	require.NoError(t, err)

	require.NotNil(t, fake.in)
	assert.Equal(t, "f@x", aws.ToString(fake.in.FromEmailAddress))
	assert.Equal(t, []string{"t@x"}, fake.in.Destination.ToAddresses)
	assert.Equal(t, "subj", aws.ToString(fake.in.Content.Simple.Subject.Data))
	assert.Equal(t, "body", aws.ToString(fake.in.Content.Simple.Body.Text.Data))

	fake.err = errors.New("throttled")
	assert.Error(t, s.Send(context.Background(), Message{}))
}

func TestNewSender(t *testing.T) {
	stubAWS(t, &fakeSES{})
	log := logging.Discard()

	s, err := NewSender(context.Background(), &sc.Config{MailDriver: sc.MailDriverLog}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	s, err = NewSender(context.Background(), &sc.Config{MailDriver: sc.MailDriverSES}, log)
	require.NoError(t, err)
	assert.IsType(t, &SESSender{}, s)

	_, err = NewSender(context.Background(), &sc.Config{MailDriver: "pigeon"}, log)
	assert.Error(t, err)
}
