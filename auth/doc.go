// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing, token generation and comparison utilities.

# Journal Passwords

Journal account passwords are stored only as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.VerifyUser(user.PasswordHash, found, password)

VerifyUser always runs one bcrypt comparison, against a dummy hash when the
user does not exist, and returns ErrInvalidCredentials for both an unknown
user and a wrong password.

# Download Password

The two downloads share one configured password:

	err := auth.CheckSharedPassword(submitted, cfg.Password)

The comparison is constant time over SHA-256 digests.

# Remember-Me Tokens

Remember-me cookies carry an HS256 JWT whose subject is the normalized
username and a random GenerateID jti:

	token, err := auth.GenerateRememberToken(username, user.RememberVersion, cfg.SecretKey, 30*24*time.Hour)
	remembered, err := auth.VerifyRememberToken(token, cfg.SecretKey)

Only HS256 is accepted; expired, unsigned or foreign tokens return
ErrInvalidToken. The token also carries the user's remember version; bumping
the stored version on logout revokes every outstanding token for that user.

# Random Values

	id, err := auth.GenerateID(16)     // 32 hex characters
	token, err := auth.GenerateToken() // URL-safe, 192 bits

# IP Hashing

For privacy-preserving logging and rate limiting:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
