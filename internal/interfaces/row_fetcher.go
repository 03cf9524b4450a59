package interfaces

import (
	"context"

	"PipocaFlix/internal/model"
	"PipocaFlix/internal/rowstore"
)

// RowFetcher 目录服务依赖的表格后端能力（rowstore.Client 实现）
type RowFetcher interface {
	FetchRows(ctx context.Context, tableID int64, params rowstore.Params) (*model.RawRowSet, error)
	FetchRowByID(ctx context.Context, tableID, rowID int64) (model.RawRow, error)
	SearchRows(ctx context.Context, tableID int64, term string) (*model.RawRowSet, error)
	ClearCache()
}
