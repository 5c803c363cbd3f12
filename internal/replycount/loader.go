package replycount

import (
	"context"
	"strconv"
	"time"

	"github.com/graph-gophers/dataloader"
)

// Source - источник счетчиков ответов (HTTP-клиент сервиса ответов).
type Source interface {
	Counts(ctx context.Context, postIDs []int64) (map[int64]int64, error)
}

// Loader батчит запросы счетчиков ответов через dataloader:
// параллельные запросы top-posts сливаются в ОДИН запрос к сервису ответов.
type Loader struct {
	loader *dataloader.Loader
}

// New создает лоадер поверх источника счетчиков.
// Кеш очищается после каждого батча, чтобы не отдавать устаревшие счетчики.
func New(source Source) *Loader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]int64, len(keys))
		for i, key := range keys {
			id, err := strconv.ParseInt(key.String(), 10, 64)
			if err != nil {
				// Ключи формируются здесь же, нечисловой ключ - ошибка программиста.
				results := make([]*dataloader.Result, len(keys))
				for j := range results {
					results[j] = &dataloader.Result{Error: err}
				}
				return results
			}
			ids[i] = id
		}

		counts, err := source.Counts(ctx, ids)
		if err != nil {
			// В случае ошибки возвращаем ее для всех ключей
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи.
		// Пост без ответов получает ноль.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			results[i] = &dataloader.Result{Data: counts[id]}
		}
		return results
	}

	return &Loader{
		loader: dataloader.NewBatchedLoader(batchFn,
			dataloader.WithWait(2*time.Millisecond),
			dataloader.WithClearCacheOnBatch(),
		),
	}
}

// Counts загружает счетчики через лоадер; реализует тот же контракт,
// что и прямой клиент, поэтому сервис не знает о батчинге.
func (l *Loader) Counts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	keys := make(dataloader.Keys, len(postIDs))
	for i, id := range postIDs {
		keys[i] = dataloader.StringKey(strconv.FormatInt(id, 10))
	}

	values, errs := l.loader.LoadMany(ctx, keys)()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	counts := make(map[int64]int64, len(postIDs))
	for i, v := range values {
		if count, ok := v.(int64); ok {
			counts[postIDs[i]] = count
		}
	}
	return counts, nil
}
