package api

import "strings"

// Status messages that let clients tell apart failures sharing a gRPC code.
const (
	ReasonTokenExpired      = "token expired"
	ReasonMissingToken      = "missing token"
	ReasonInvalidToken      = "invalid token"
	ReasonEmailNotConfirmed = "email_not_confirmed"
	ReasonEmailTaken        = "email_taken"
	ReasonPathConflict      = "path_conflict"
	ReasonInvalidCategory   = "invalid_category"
	ReasonProfile           = "profile_resolution"
	ReasonQuery             = "query_failed"
	ReasonObjectWrite       = "object_write"
	ReasonURLResolution     = "url_resolution"
	ReasonMetadataInsert    = "metadata_insert"
	ReasonOrphanedObject    = "orphaned_object"
	ReasonTimeout           = "timeout"
)

const reasonSep = ","

// JoinReasons packs several reasons into one status message.
func JoinReasons(reasons ...string) string {
	return strings.Join(reasons, reasonSep)
}

// SplitReasons is the inverse of JoinReasons.
func SplitReasons(msg string) []string {
	return strings.Split(msg, reasonSep)
}
