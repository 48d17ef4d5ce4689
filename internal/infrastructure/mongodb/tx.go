package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

// TxRunner adapts the MongoDB session API to the domain's transaction
// contract. The session context it hands to fn satisfies context.Context,
// so repositories run their writes inside the transaction transparently.
type TxRunner struct {
	client *pkgmongo.CircuitBreakerClient
}

func NewTxRunner(client *pkgmongo.CircuitBreakerClient) *TxRunner {
	return &TxRunner{client: client}
}

func (r *TxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
