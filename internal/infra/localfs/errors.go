package localfs

import "errors"

var (
	ErrInvalidPath     = errors.New("некорректный удаленный путь")
	ErrSessionNotFound = errors.New("сессия загрузки не найдена")
	ErrOffsetMismatch  = errors.New("смещение не совпадает с размером принятых данных")
	ErrWriteFailed     = errors.New("не удалось записать файл")
)
