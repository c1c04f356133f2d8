package mailer

import (
	"context"
	"errors"
	"fmt"

	"poster_shop/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/dm"
)

// DirectMailMailer 阿里云邮件推送（DirectMail）单封发送
type DirectMailMailer struct {
	client    *dm.Client
	account   string
	fromAlias string
}

func NewDirectMailMailer(cfg config.MailConfig) (*DirectMailMailer, error) {
	if cfg.AccessKeyID == "" || cfg.AccountName == "" {
		return nil, errors.New("directmail config is missing")
	}

	client, err := dm.NewClientWithAccessKey(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	return &DirectMailMailer{
		client:    client,
		account:   cfg.AccountName,
		fromAlias: cfg.FromAlias,
	}, nil
}

func (m *DirectMailMailer) Send(ctx context.Context, msg Message) error {
	request := dm.CreateSingleSendMailRequest()
	request.Scheme = "https"
	request.AccountName = m.account
	request.FromAlias = m.fromAlias
	request.AddressType = requests.NewInteger(1)
	request.ReplyToAddress = requests.NewBoolean(false)
	request.ToAddress = msg.To
	request.Subject = msg.Subject
	request.HtmlBody = msg.HTML
	request.TextBody = msg.Text

	response, err := m.client.SingleSendMail(request)
	if err != nil {
		return fmt.Errorf("directmail send: %w", err)
	}
	if !response.IsSuccess() {
		return fmt.Errorf("directmail send: status %d", response.GetHttpStatus())
	}
	return nil
}
