// Package outcome holds the error taxonomy shared by every vizgate
// component and the {status, message, data} envelope reported to users.
//
// Components declare their sentinels with New:
//
//	var ErrNotOwned = outcome.New(outcome.KindNotFound, "project not found")
//
// and wrap them with fmt.Errorf("...: %w", ErrNotOwned). Transports call
// KindOf to pick a status code and FromError to build the response body.
package outcome
