package dropbox

import "errors"

var (
	ErrUploadFailed  = errors.New("не удалось загрузить файл в Dropbox")
	ErrSessionStart  = errors.New("не удалось открыть сессию загрузки Dropbox")
	ErrSessionAppend = errors.New("не удалось дописать часть в сессию Dropbox")
	ErrSessionFinish = errors.New("не удалось завершить сессию загрузки Dropbox")
)
