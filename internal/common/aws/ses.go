// internal/common/aws/ses.go
package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the subset of the SES client used here. Satisfied by *ses.Client and test mocks.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESClient struct {
	api SESAPI
}

func NewSESClient(cfg awsv2.Config) *SESClient {
	return &SESClient{api: ses.NewFromConfig(cfg)}
}

func NewSESClientWithAPI(api SESAPI) *SESClient {
	return &SESClient{api: api}
}

// SendText sends a plain-text email and returns the SES message id.
func (s *SESClient) SendText(ctx context.Context, from, to, subject, body string) (string, error) {
	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Source: awsv2.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: awsv2.String(subject), Charset: awsv2.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: awsv2.String(body), Charset: awsv2.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return awsv2.ToString(out.MessageId), nil
}
