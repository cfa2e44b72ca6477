package common

const (
	// AuthorizationHeaderName carries the access token on protected requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authorization scheme expected in front of the token.
	BearerScheme = "Bearer"

	// TokenSecretSize is the number of random bytes behind a generated signing
	// secret. The hex form is twice as long.
	TokenSecretSize = 64
)
