package errors

import (
	stderrors "errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Workspace errors
	CodeWorkspaceNameEmpty   Code = "WORKSPACE_NAME_EMPTY"
	CodeWorkspaceInvalidType Code = "WORKSPACE_INVALID_TYPE"

	// Member errors
	CodeMemberEmptyWorkspaceID Code = "MEMBER_EMPTY_WORKSPACE_ID"
	CodeMemberEmptyUserID      Code = "MEMBER_EMPTY_USER_ID"
	CodeMemberInvalidRole      Code = "MEMBER_INVALID_ROLE"

	// Team errors
	CodeTeamNameEmpty          Code = "TEAM_NAME_EMPTY"
	CodeTeamEmptyWorkspaceID   Code = "TEAM_EMPTY_WORKSPACE_ID"
	CodeTeamGrantInvalidLevel  Code = "TEAM_GRANT_INVALID_LEVEL"
	CodeTeamGrantEmptyTargetID Code = "TEAM_GRANT_EMPTY_TARGET_ID"

	// Collection errors
	CodeCollectionNameEmpty        Code = "COLLECTION_NAME_EMPTY"
	CodeCollectionEmptyWorkspaceID Code = "COLLECTION_EMPTY_WORKSPACE_ID"
	CodeCollectionPrivateNoOwner   Code = "COLLECTION_PRIVATE_NO_OWNER"

	// Scene errors
	CodeSceneNameEmpty          Code = "SCENE_NAME_EMPTY"
	CodeSceneEmptyWorkspaceID   Code = "SCENE_EMPTY_WORKSPACE_ID"
	CodeSceneRoomAlreadyBound   Code = "SCENE_ROOM_ALREADY_BOUND"
	CodeSceneCollectionMismatch Code = "SCENE_COLLECTION_MISMATCH"

	// Access errors
	CodeAccessDenied     Code = "ACCESS_DENIED"
	CodeAuthTokenInvalid Code = "AUTH_TOKEN_INVALID"

	// Room errors
	CodeRoomCollaborationDisabled Code = "ROOM_COLLABORATION_DISABLED"
	CodeRoomCredentialUnavailable Code = "ROOM_CREDENTIAL_UNAVAILABLE"
	CodeRoomSecretMissing         Code = "ROOM_SECRET_MISSING"
	CodeRoomKeyInvalidLength      Code = "ROOM_KEY_INVALID_LENGTH"
	CodeRoomCiphertextMalformed   Code = "ROOM_CIPHERTEXT_MALFORMED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes for the JSON boundary.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeWorkspaceNameEmpty,
		CodeWorkspaceInvalidType,
		CodeMemberEmptyWorkspaceID,
		CodeMemberEmptyUserID,
		CodeMemberInvalidRole,
		CodeTeamNameEmpty,
		CodeTeamEmptyWorkspaceID,
		CodeTeamGrantInvalidLevel,
		CodeTeamGrantEmptyTargetID,
		CodeCollectionNameEmpty,
		CodeCollectionEmptyWorkspaceID,
		CodeCollectionPrivateNoOwner,
		CodeSceneNameEmpty,
		CodeSceneEmptyWorkspaceID,
		CodeSceneCollectionMismatch,
		CodeRoomKeyInvalidLength:
		return http.StatusBadRequest

	// Forbidden - a security decision, never conflated with room
	// credential availability below.
	case CodeAccessDenied,
		CodeRoomCollaborationDisabled:
		return http.StatusForbidden

	case CodeAuthTokenInvalid:
		return http.StatusUnauthorized

	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - state already claimed by a concurrent writer
	case CodeSceneRoomAlreadyBound:
		return http.StatusConflict

	// Service unavailable - key rotation or corrupt blob, an
	// operational artifact rather than a permission outcome.
	case CodeRoomCredentialUnavailable,
		CodeRoomCiphertextMalformed,
		CodeRoomSecretMissing:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}
