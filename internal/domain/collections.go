package domain

import "time"

// UserClaim is a type/value pair attached to an account. A claim is unique
// per (type, value); a type may carry several values.
type UserClaim struct {
	Type  string `json:"type" dynamodbav:"type"`
	Value string `json:"value" dynamodbav:"value"`
}

// LinkedAccount links an external-provider identity (e.g. a Google subject)
// to the owning account. Keyed by (ProviderName, ProviderAccountID).
type LinkedAccount struct {
	ProviderName      string      `json:"provider_name" dynamodbav:"provider_name"`
	ProviderAccountID string      `json:"provider_account_id" dynamodbav:"provider_account_id"`
	LastLogin         *time.Time  `json:"last_login,omitempty" dynamodbav:"last_login"`
	Claims            []UserClaim `json:"claims,omitempty" dynamodbav:"claims"`
}

// UserCertificate registers a client certificate for certificate-based
// two-factor authentication. A thumbprint belongs to at most one account
// within a tenant (enforced by an event-bus validator, not here).
type UserCertificate struct {
	Thumbprint string `json:"thumbprint" dynamodbav:"thumbprint"`
	Subject    string `json:"subject" dynamodbav:"subject"`
}

// TwoFactorAuthToken is a hashed "remember this device" token letting a
// trusted client skip the second factor for a while.
type TwoFactorAuthToken struct {
	Token  string    `json:"-" dynamodbav:"token"` // hashed
	Issued time.Time `json:"issued" dynamodbav:"issued"`
}

// PasswordResetSecret is a question/answer pair used as a fallback
// password-reset channel. Answers are stored hashed.
type PasswordResetSecret struct {
	ID       string `json:"id" dynamodbav:"secret_id"`
	Question string `json:"question" dynamodbav:"question"`
	Answer   string `json:"-" dynamodbav:"answer"` // hashed
}
