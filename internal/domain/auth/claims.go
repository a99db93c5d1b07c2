package auth

// IdentityClaims represents the claims extracted from a verified provider id_token
type IdentityClaims struct {
	TenantID          string `json:"tid"`                // Entra ID tenant
	ObjectID          string `json:"oid"`                // Directory object ID of the user
	Subject           string `json:"sub"`                // Token subject
	Email             string `json:"email"`              // User email
	Name              string `json:"name"`               // Full name
	PreferredUsername string `json:"preferred_username"` // Username
	Issuer            string `json:"iss"`                // Token issuer
	ExpiresAt         int64  `json:"exp"`                // Expiration time
	IssuedAt          int64  `json:"iat"`                // Issued at time
}

// SessionClaims represents the contents of the first-party auth cookie.
// It is minted once per login and carries only what the gate needs.
type SessionClaims struct {
	TenantID          string `json:"tid"`
	ObjectID          string `json:"oid"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	IssuedAt          int64  `json:"iat"`
	ExpiresAt         int64  `json:"exp"`
}
