package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeWorkspaceNameEmpty   = "WORKSPACE_NAME_EMPTY"
	CodeWorkspaceInvalidType = "WORKSPACE_INVALID_TYPE"

	CodeMemberEmptyWorkspaceID = "MEMBER_EMPTY_WORKSPACE_ID"
	CodeMemberEmptyUserID      = "MEMBER_EMPTY_USER_ID"
	CodeMemberInvalidRole      = "MEMBER_INVALID_ROLE"

	CodeTeamNameEmpty          = "TEAM_NAME_EMPTY"
	CodeTeamEmptyWorkspaceID   = "TEAM_EMPTY_WORKSPACE_ID"
	CodeTeamGrantInvalidLevel  = "TEAM_GRANT_INVALID_LEVEL"
	CodeTeamGrantEmptyTargetID = "TEAM_GRANT_EMPTY_TARGET_ID"

	CodeCollectionNameEmpty        = "COLLECTION_NAME_EMPTY"
	CodeCollectionEmptyWorkspaceID = "COLLECTION_EMPTY_WORKSPACE_ID"
	CodeCollectionPrivateNoOwner   = "COLLECTION_PRIVATE_NO_OWNER"

	CodeSceneNameEmpty          = "SCENE_NAME_EMPTY"
	CodeSceneEmptyWorkspaceID   = "SCENE_EMPTY_WORKSPACE_ID"
	CodeSceneRoomAlreadyBound   = "SCENE_ROOM_ALREADY_BOUND"
	CodeSceneCollectionMismatch = "SCENE_COLLECTION_MISMATCH"

	CodeAccessDenied     = "ACCESS_DENIED"
	CodeAuthTokenInvalid = "AUTH_TOKEN_INVALID"

	CodeRoomCollaborationDisabled = "ROOM_COLLABORATION_DISABLED"
	CodeRoomCredentialUnavailable = "ROOM_CREDENTIAL_UNAVAILABLE"
	CodeRoomSecretMissing         = "ROOM_SECRET_MISSING"
	CodeRoomKeyInvalidLength      = "ROOM_KEY_INVALID_LENGTH"
	CodeRoomCiphertextMalformed   = "ROOM_CIPHERTEXT_MALFORMED"

	CodeNotFound = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Workspace errors
		CodeWorkspaceNameEmpty:   "Workspace name is required",
		CodeWorkspaceInvalidType: "Workspace type must be personal or shared",

		// Member errors
		CodeMemberEmptyWorkspaceID: "Workspace ID is required for membership",
		CodeMemberEmptyUserID:      "User ID is required for membership",
		CodeMemberInvalidRole:      "Member role must be admin, member, or viewer",

		// Team errors
		CodeTeamNameEmpty:          "Team name is required",
		CodeTeamEmptyWorkspaceID:   "Workspace ID is required for a team",
		CodeTeamGrantInvalidLevel:  "Team access level must be view or edit",
		CodeTeamGrantEmptyTargetID: "Team and collection IDs are required for a grant",

		// Collection errors
		CodeCollectionNameEmpty:        "Collection name is required",
		CodeCollectionEmptyWorkspaceID: "Workspace ID is required for a collection",
		CodeCollectionPrivateNoOwner:   "Private collections require an owner",

		// Scene errors
		CodeSceneNameEmpty:          "Scene name is required",
		CodeSceneEmptyWorkspaceID:   "Workspace ID is required for a scene",
		CodeSceneRoomAlreadyBound:   "Scene already has a collaboration room",
		CodeSceneCollectionMismatch: "Scene collection belongs to a different workspace",

		// Access errors
		CodeAccessDenied:     "You do not have access to this scene",
		CodeAuthTokenInvalid: "Sign in to continue",

		// Room errors
		CodeRoomCollaborationDisabled: "Collaboration is not enabled for this scene",
		CodeRoomCredentialUnavailable: "Live collaboration is unavailable right now",
		CodeRoomSecretMissing:         "Collaboration is not configured on this server",
		CodeRoomKeyInvalidLength:      "Room key has an unexpected length",
		CodeRoomCiphertextMalformed:   "Stored room credential is unreadable",

		// Storage errors
		CodeNotFound: "The requested resource was not found",
	},
}
