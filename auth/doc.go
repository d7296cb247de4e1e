// Package auth attaches client credentials to requests sent to the real
// video service.
//
// A TokenSource yields the credential for each request. StaticToken serves a
// fixed API key; JWTSigner mints short-lived HS256 bearer tokens and reuses
// them until shortly before they expire. Transport is an http.RoundTripper
// that sets the credential header on a clone of every outgoing request.
//
//	signer, err := auth.NewJWTSigner(auth.JWTSignerConfig{
//	    Key:      []byte(os.Getenv("MEDIAPROXY_SIGNING_KEY")),
//	    Audience: "video-service",
//	})
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{Transport: auth.BearerTransport(signer, nil)}
package auth
