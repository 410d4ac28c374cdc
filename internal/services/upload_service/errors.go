package upload_service

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	ErrInvalidChunkSize = errors.New("размер части должен быть положительным")

	ErrFileOpenFailed = errors.New("не удалось открыть файл")
	ErrFileStatFailed = errors.New("не удалось определить размер файла")
	ErrShortRead      = errors.New("файл оказался короче ожидаемого размера")

	ErrUploadFailed  = errors.New("не удалось загрузить файл целиком")
	ErrSessionStart  = errors.New("не удалось открыть сессию загрузки")
	ErrSessionAppend = errors.New("не удалось дописать часть в сессию")
	ErrSessionFinish = errors.New("не удалось завершить сессию загрузки")
)
