package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used here.
type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type sesSender struct {
	client SESAPI
}

// NewSESSender loads the default AWS credential chain for region.
func NewSESSender(ctx context.Context, region string) (Sender, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &sesSender{client: ses.NewFromConfig(cfg)}, nil
}

func NewSESSenderWithClient(client SESAPI) Sender {
	return &sesSender{client: client}
}

func (s *sesSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{
			Data: []byte(headers(msg) + msg.HTML),
		},
	})
	if err != nil {
		return fmt.Errorf("ses send raw email: %w", err)
	}
	return nil
}
