// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the subset of the SNS API the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(cfg), nil
}

// KnowledgeGap describes a question the service could not answer from its
// knowledge base.
type KnowledgeGap struct {
	Question  string    `json:"question"`
	Language  string    `json:"language"`
	Mode      string    `json:"mode"`
	Reason    string    `json:"reason"`
	RequestID string    `json:"requestId,omitempty"`
	At        time.Time `json:"at"`
}

// GapNotifier publishes KnowledgeGap events to an SNS topic so content owners
// can see what is missing.
type GapNotifier struct {
	client   Publisher
	topicARN string
	logger   logger.Logger
}

func NewGapNotifier(client Publisher, topicARN string, log logger.Logger) *GapNotifier {
	return &GapNotifier{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "gap-notifier"}),
	}
}

func (n *GapNotifier) Notify(ctx context.Context, gap KnowledgeGap) error {
	body, err := json.Marshal(gap)
	if err != nil {
		return err
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Subject:  awssdk.String("MIDC chatbot knowledge gap"),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"reason": {DataType: awssdk.String("String"), StringValue: awssdk.String(gap.Reason)},
			"mode":   {DataType: awssdk.String("String"), StringValue: awssdk.String(gap.Mode)},
		},
	})
	if err != nil {
		return err
	}
	n.logger.Debug("knowledge gap published", map[string]interface{}{
		"messageId": awssdk.ToString(out.MessageId),
		"reason":    gap.Reason,
	})
	return nil
}
