package api

import (
	"context"
	"fmt"
)

// FetchStreamingCredentials obtains a public streaming token and the ordered
// list of instance servers. Tokens are single-use: call once per connect.
func (c *Client) FetchStreamingCredentials(ctx context.Context) (*StreamingCredentials, error) {
	var resp BulletResponse
	if err := c.post(ctx, "/bullet-public", &resp); err != nil {
		return nil, fmt.Errorf("fetch streaming credentials: %w", err)
	}

	c.logger.Debug("fetched streaming credentials",
		"code", resp.Code,
		"instance_servers", len(resp.Data.InstanceServers),
	)

	return &resp.Data, nil
}
