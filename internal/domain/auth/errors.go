package auth

import "errors"

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")

// Messages returned to API callers.
const (
	MsgInvalidCredentials = "Credenciais Invalidas"
	MsgUnauthorized       = "Não autorizado"
	MsgUserNotFound       = "Usuário não encontrado"
	MsgLogoutFailed       = "Erro ao deslogar, tente novamente"
	MsgLoggedOut          = "Deslogado com sucesso"
	MsgValidationFailed   = "Os dados fornecidos são inválidos."
	MsgInternal           = "Erro interno do servidor"
)
