/*
Package authsdk provides the wire types and a Go client for the MotriLog
authentication service.

# Overview

The server side uses the request and response types in this package for its
JSON bodies, and APIError to write errors as {"error": "<message>"}. The
client side wraps the same endpoints:

	client := authsdk.NewClient("http://localhost:8080")

	resp, err := client.Login(ctx, "driver@example.com", "secret")
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
			// account suspended
		}
	}

	if resp.Pending2FA() {
		// the code was sent to the linked Telegram chat
		resp, err = client.Verify2FA(ctx, code)
	}

	profile, err := client.Profile(ctx)

# Sessions

The service keeps sessions server side and hands the client an opaque token
in the motrilog_session cookie. Client keeps it in a cookie jar, so a Client
value represents one logged-in browser. Tools that obtained a token some
other way can set SessionToken to send it as a Bearer header instead.

# Admin

	users, err := client.ListUsers(ctx)
	ban, err := client.ToggleBan(ctx, users[1].ID)
	fmt.Println(ban.IsActive)
*/
package authsdk
