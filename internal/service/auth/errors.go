package auth

import "errors"

// Token errors. The API maps all of them to 401.
var (
	// ErrInvalidToken covers malformed access tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid authentication token")

	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned while an access token's nbf lies
	// beyond the allowed clock skew.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when a library request has no bearer token.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType is returned when a refresh token is presented on a
	// library route or an access token on the refresh endpoint.
	ErrWrongTokenType = errors.New("wrong token type")

	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredRefreshToken = errors.New("refresh token has expired")
)
