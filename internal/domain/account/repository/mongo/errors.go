package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

// storeError classifies a driver failure: lost connectivity and timeouts are
// reported as unavailable, everything else as internal.
func storeError(err error, message string) error {
	if unavailable(err) {
		return pkgerrors.WrapServiceUnavailable(err, message)
	}
	return pkgerrors.WrapInternal(err, message)
}

func unavailable(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}
