package factory

import (
	"net/http"
	"strings"

	"github.com/mikey/mail-relay/internal/config"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	slackadapter "github.com/mikey/mail-relay/internal/adapters/slack"
)

// NewChatClient creates the Slack chat client
func NewChatClient(cfg *config.Config, logger *zap.Logger, httpClient *http.Client) core.ChatClient {
	slackCfg := cfg.GetSlack()

	options := []slack.Option{slack.OptionHTTPClient(httpClient)}
	if slackCfg.APIURL != "" {
		options = append(options, slack.OptionAPIURL(strings.TrimRight(slackCfg.APIURL, "/")+"/"))
	}

	return slackadapter.NewClient(slack.New(slackCfg.APIToken, options...), logger)
}
