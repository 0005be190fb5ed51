package sms

import (
	"context"
	"log"
	"strings"

	"gigbook/internal/config"
	"gigbook/internal/model"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioTransport 短信 / WhatsApp 下发通道
// E.164 格式（+ 开头）的号码优先走 WhatsApp，否则走短信
type TwilioTransport struct {
	cfg    *config.TwilioConfig
	client *twilio.RestClient
}

func NewTwilioTransport(cfg *config.TwilioConfig) *TwilioTransport {
	return &TwilioTransport{
		cfg: cfg,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
	}
}

func (t *TwilioTransport) Send(ctx context.Context, recipient *model.User, title, message string) error {
	if recipient.Phone == "" {
		// 没有手机号就只留站内通知
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(title + "\n" + message)

	if strings.HasPrefix(recipient.Phone, "+") && t.cfg.WhatsAppFrom != "" {
		params.SetTo("whatsapp:" + recipient.Phone)
		params.SetFrom("whatsapp:" + t.cfg.WhatsAppFrom)
	} else {
		params.SetTo(recipient.Phone)
		params.SetFrom(t.cfg.FromNumber)
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		log.Printf("[Twilio] 消息已发送: to=%s, sid=%s", recipient.Phone, *resp.Sid)
	}
	return nil
}
