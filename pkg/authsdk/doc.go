/*
Package authsdk provides a client SDK for the storefront authentication
service, together with the request and response types its HTTP handlers use.

# SDKClient vs Session

  - SDKClient covers the public endpoints: login, refresh, revoke, account
    registration and password recovery.
  - Session holds a token pair and refreshes the access token on demand.

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.AuthenticateWithPassword(ctx, "ana@example.com", "s3cret-pass")
	if err != nil {
		return err
	}
	me, err := session.Me(ctx)

# Refresh tokens

Refresh tokens are single use. Presenting a token twice is treated as theft:
the server revokes every session of the user and answers with
ErrReuseDetected. A Session serialises its own refreshes, but two Sessions
built from the same tokens will trip reuse detection.

# Errors

Failed calls return *APIError, which compares equal under errors.Is to the
predefined values:

	err := client.ResetPassword(ctx, email, code, newPassword)
	if errors.Is(err, authsdk.ErrInvalidOrExpired) {
		// ask for a new code
	}

Responses are wrapped in an envelope with the fields exitoso, mensaje,
codigo and datos.
*/
package authsdk
