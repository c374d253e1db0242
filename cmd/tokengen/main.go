// Package main signs bridge tokens for local testing. Use the same key the
// server reads from BRIDGE_SIGNING_KEY or BRIDGE_TENANT_KEYS.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"realmbridge/internal/token"
)

type tokenOutput struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func main() {
	user := flag.String("user", "", "Local part of the address (required)")
	realm := flag.String("realm", "", "Domain part of the address (required)")
	role := flag.String("role", "", "Role claim, e.g. administrator (optional)")
	ttl := flag.Duration("ttl", 15*time.Minute, "Token lifetime; 0 omits the exp claim")
	key := flag.String("key", os.Getenv("BRIDGE_SIGNING_KEY"), "HMAC signing key")
	asJSON := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *user == "" || *realm == "" || *key == "" {
		fmt.Fprintln(os.Stderr, "usage: tokengen -user alice -realm acme.com -key SECRET [-role administrator] [-ttl 15m] [-json]")
		os.Exit(2)
	}

	claims := token.Claims{User: *user, Realm: *realm}
	if *role != "" {
		claims.Role = role
	}

	now := time.Now()
	var expiresAt time.Time
	if *ttl > 0 {
		expiresAt = now.Add(*ttl)
	}

	raw, err := token.Sign([]byte(*key), claims, now, expiresAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}

	if !*asJSON {
		fmt.Println(raw)
		return
	}
	out := tokenOutput{Token: raw, Email: claims.Email()}
	if !expiresAt.IsZero() {
		out.ExpiresAt = expiresAt.UTC().Format(time.RFC3339)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
		os.Exit(1)
	}
}
