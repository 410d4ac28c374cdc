package dump_service

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	ErrDumpFailed       = errors.New("не удалось создать дамп базы данных")
	ErrMkdirFailed      = errors.New("не удалось создать директорию")
	ErrFileCreateFailed = errors.New("не удалось создать файл")
)
