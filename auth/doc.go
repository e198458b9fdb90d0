// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides login, password hashing and access tokens.

# Login

Login signs a user in, or registers the username on first use:

	svc := auth.NewService(store, auth.Config{Secret: secret})
	resp, err := svc.Login(ctx, "goosefan", "password123")

Usernames are 1-50 characters and passwords 8-100. A new user's role
comes from RoleFor: the configured admin username becomes admin, the
ghost usernames become ghost, everybody else is a player.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

# Access Tokens

Tokens are HS256 JWTs whose subject is the user ID:

	token, err := auth.IssueToken(user, secret, 24*time.Hour, time.Now())
	claims, err := auth.ParseToken(token, secret, time.Now())

ParseToken rejects other signing algorithms, missing or past expiry and
tokens without a subject. Authenticate additionally reloads the user, so
the role in effect is always the stored one.
*/
package auth
