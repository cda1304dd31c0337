package task

// Messages returned to API callers.
const (
	MsgNotFound         = "Task não encontrada"
	MsgDeleted          = "Task deletada com sucesso"
	MsgValidationFailed = "Os dados fornecidos são inválidos."
)
