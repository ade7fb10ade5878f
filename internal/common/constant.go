// Package common contains shared constants and sentinel errors used across
// StudyShare components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultSchool is assigned to an identity that has no profile yet.
const DefaultSchool = "default_school"
