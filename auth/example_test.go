package auth_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/mediaproxy/auth"
)

func ExampleJWTSigner() {
	signer, err := auth.NewJWTSigner(auth.JWTSignerConfig{
		Key:      []byte("example-signing-key"),
		Subject:  "proxy",
		Audience: "video-service",
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	token, _ := signer.Token(context.Background())
	again, _ := signer.Token(context.Background())

	fmt.Println(strings.Count(token, "."))
	fmt.Println(token == again)
	// Output:
	// 2
	// true
}

func ExampleNewJWTSigner_missingKey() {
	_, err := auth.NewJWTSigner(auth.JWTSignerConfig{})
	fmt.Println(err)
	// Output: auth: signing key is required
}
