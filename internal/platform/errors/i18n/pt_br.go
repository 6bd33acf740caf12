package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeWorkspaceNameEmpty:   "O nome do espaço de trabalho é obrigatório",
		CodeWorkspaceInvalidType: "O tipo do espaço de trabalho deve ser pessoal ou compartilhado",

		CodeMemberEmptyWorkspaceID: "O ID do espaço de trabalho é obrigatório para a associação",
		CodeMemberEmptyUserID:      "O ID do usuário é obrigatório para a associação",
		CodeMemberInvalidRole:      "O papel do membro deve ser admin, member ou viewer",

		CodeTeamNameEmpty:          "O nome da equipe é obrigatório",
		CodeTeamEmptyWorkspaceID:   "O ID do espaço de trabalho é obrigatório para uma equipe",
		CodeTeamGrantInvalidLevel:  "O nível de acesso da equipe deve ser view ou edit",
		CodeTeamGrantEmptyTargetID: "Os IDs de equipe e coleção são obrigatórios para uma concessão",

		CodeCollectionNameEmpty:        "O nome da coleção é obrigatório",
		CodeCollectionEmptyWorkspaceID: "O ID do espaço de trabalho é obrigatório para uma coleção",
		CodeCollectionPrivateNoOwner:   "Coleções privadas exigem um proprietário",

		CodeSceneNameEmpty:          "O nome da cena é obrigatório",
		CodeSceneEmptyWorkspaceID:   "O ID do espaço de trabalho é obrigatório para uma cena",
		CodeSceneRoomAlreadyBound:   "A cena já possui uma sala de colaboração",
		CodeSceneCollectionMismatch: "A coleção da cena pertence a outro espaço de trabalho",

		CodeAccessDenied:     "Você não tem acesso a esta cena",
		CodeAuthTokenInvalid: "Entre para continuar",

		CodeRoomCollaborationDisabled: "A colaboração não está habilitada para esta cena",
		CodeRoomCredentialUnavailable: "A colaboração ao vivo está indisponível no momento",
		CodeRoomSecretMissing:         "A colaboração não está configurada neste servidor",
		CodeRoomKeyInvalidLength:      "A chave da sala tem um tamanho inesperado",
		CodeRoomCiphertextMalformed:   "A credencial da sala armazenada está ilegível",

		CodeNotFound: "O recurso solicitado não foi encontrado",
	},
}
