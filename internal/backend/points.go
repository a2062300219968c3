package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"workforce-portal/gateway/internal/models"
)

func (c *Client) Points(ctx context.Context, username string) (*models.PointsAccount, error) {
	path := "/api/points/"
	if username != "" {
		path += "?username=" + url.QueryEscape(username)
	}
	var acct models.PointsAccount
	if err := c.do(ctx, http.MethodGet, path, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (c *Client) AwardPoints(ctx context.Context, req models.AwardPointsRequest) error {
	return c.do(ctx, http.MethodPost, "/api/points/award/", req, nil)
}

func (c *Client) Rewards(ctx context.Context) ([]models.Reward, error) {
	var rewards []models.Reward
	if err := c.do(ctx, http.MethodGet, "/api/rewards/", nil, &rewards); err != nil {
		return nil, err
	}
	if rewards == nil {
		rewards = []models.Reward{}
	}
	return rewards, nil
}

func (c *Client) CreateReward(ctx context.Context, req models.RewardRequest) error {
	return c.do(ctx, http.MethodPost, "/api/rewards/", req, nil)
}

func (c *Client) UpdateReward(ctx context.Context, id int64, req models.RewardRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/rewards/%d/", id), req, nil)
}

func (c *Client) DeleteReward(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/rewards/%d/", id), nil, nil)
}

// RedeemReward spends points against a reward on behalf of the current
// principal.
func (c *Client) RedeemReward(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/rewards/%d/redeem/", id), nil, nil)
}
