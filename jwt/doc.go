// Package jwt manages signed credential issuance and verification for both
// access and refresh tokens, with strict type, signature, and expiry
// validation suitable for low-latency authentication paths.
package jwt
