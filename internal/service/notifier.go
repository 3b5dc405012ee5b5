package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier 发布事件的 webhook 通知（Discord 风格 payload）
// 失败只告警，不重试、不阻塞主流程
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewWebhookNotifier 创建通知器；url 为空时通知为 no-op
func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0)
	return &WebhookNotifier{client: client, url: url, logger: logger}
}

// NotifyPublish 配置发布通知
func (n *WebhookNotifier) NotifyPublish(configType, configName string, version int, actor string) {
	if n == nil || n.url == "" {
		return
	}
	msg := fmt.Sprintf("**%s** published `%s` config **%s** v%d", actor, configType, configName, version)
	go n.post(msg)
}

// NotifyWipe wipe 登记通知
func (n *WebhookNotifier) NotifyWipe(serverName string, wipeNumber int) {
	if n == nil || n.url == "" {
		return
	}
	msg := fmt.Sprintf("Server **%s** registered wipe #%d", serverName, wipeNumber)
	go n.post(msg)
}

func (n *WebhookNotifier) post(content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"content": content}).
		Post(n.url)
	if err != nil {
		n.logger.Warn("webhook notify failed", zap.Error(err))
	}
}
