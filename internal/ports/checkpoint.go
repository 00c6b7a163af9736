package ports

import "context"

// CheckpointStore хранит id последнего подтверждённо пересланного сообщения
type CheckpointStore interface {
	// Load возвращает ok=false, если чекпоинта нет или запись повреждена
	Load(ctx context.Context) (id int64, ok bool, err error)
	// Save перезаписывает чекпоинт
	Save(ctx context.Context, id int64) error
	Close() error
}
