package s3store

import "errors"

var (
	ErrUploadFailed    = errors.New("не удалось загрузить объект в S3")
	ErrSessionStart    = errors.New("не удалось открыть multipart-загрузку")
	ErrSessionAppend   = errors.New("не удалось загрузить часть")
	ErrSessionFinish   = errors.New("не удалось завершить multipart-загрузку")
	ErrSessionCancel   = errors.New("не удалось отменить multipart-загрузку")
	ErrSessionNotFound = errors.New("multipart-загрузка не найдена")
	ErrOffsetMismatch  = errors.New("смещение не совпадает с размером принятых данных")
	ErrTargetMismatch  = errors.New("путь завершения не совпадает с путем открытия сессии")
)
