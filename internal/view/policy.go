package view

import "crypto/subtle"

// Authorize applies the view access order to a presented token:
//  1. a token equal to the view's token grants, public or not
//  2. any other non-empty token is rejected
//  3. no token grants only public views
func Authorize(v *View, token string) error {
	if token != "" {
		if subtle.ConstantTimeCompare([]byte(token), []byte(v.Token)) == 1 {
			return nil
		}
		return ErrInvalidToken
	}
	if v.Public {
		return nil
	}
	return ErrTokenRequired
}
