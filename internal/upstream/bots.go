package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/looplj/ecagate/internal/objects"
	"github.com/looplj/ecagate/internal/pkg/httpclient"
)

type BotsClient struct {
	baseURL string
	client  *httpclient.HttpClient
}

func NewBotsClient(cfg BotsConfig) *BotsClient {
	return &BotsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpclient.NewHttpClient(defaultTimeout(cfg.Timeout)),
	}
}

// ListBots fetches the whole bots registry.
func (c *BotsClient) ListBots(ctx context.Context) ([]objects.Bot, error) {
	resp, err := c.client.Do(ctx, &httpclient.Request{
		Method: http.MethodGet,
		URL:    c.baseURL + "/bots",
	})
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}

	bots, err := objects.ParseBots(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}

	return bots, nil
}
