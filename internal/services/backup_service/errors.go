package backup_service

import "errors"

var (
	ErrContextDone   = errors.New("отмена контекста")
	ErrMkdirFailed   = errors.New("не удалось создать директорию для резервных копий")
	ErrNoArtifacts   = errors.New("нет файлов для загрузки")
	ErrDirectoryGone = errors.New("архив не создан: директория не существует")
	ErrArchiveFailed = errors.New("архив не создан")
	ErrDumpFailed    = errors.New("дамп не создан")
	ErrUploadFailed  = errors.New("файл не загружен")
)
