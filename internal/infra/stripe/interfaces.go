package stripe

import "context"

type GatewayInterface interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, orderID uint64) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
}

var _ GatewayInterface = (*Client)(nil)
