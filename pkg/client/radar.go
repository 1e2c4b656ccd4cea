package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type RadarClient struct {
	*BaseClient
	url string
}

func NewRadarClient(url string, config ClientConfig, logger *zap.Logger) *RadarClient {
	baseClient := NewBaseClient("radar", config, logger)
	return &RadarClient{
		BaseClient: baseClient,
		url:        url,
	}
}

// GetLoop fetches the current radar loop GIF.
func (c *RadarClient) GetLoop(ctx context.Context) ([]byte, error) {
	data, err := c.GetWithRetry(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch radar loop: %w", err)
	}
	return data, nil
}
