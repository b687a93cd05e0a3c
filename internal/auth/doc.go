// Package auth holds user accounts: the credential store, token issuance
// and the pending-to-accepted account lifecycle.
//
// Passwords are hashed with Argon2id and stored in PHC string format.
// Sessions are opaque bearer tokens kept in the users table: a session
// token is the login followed by 32 random alphanumerics and stays valid
// until it is rotated by the next login or cleared by logout.
//
// Until an account is confirmed the same column holds the confirmation
// code mailed at registration. Confirmation clears it, marks the account
// accepted and creates the user's storage root; nothing else creates that
// directory.
//
// Records returned for display are PublicUser values. The password hash
// and token never leave the package except through Session.
package auth
