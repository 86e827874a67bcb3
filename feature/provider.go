package feature

import (
	"context"
	"time"
)

// ActivityProvider 提供候选人的最近活跃时间（实时特征）。
//
// 资料记录里的 LastActiveAt 来自离线同步，可能滞后或缺失；
// 接了特征服务的部署可以用在线特征补齐，没接的直接跳过，
// 活跃度信号按未知处理（贡献为 0）。
//
// 实现：
//   - FeastProvider 基于官方 Feast Go SDK（gRPC）
//   - 其他特征后端（Redis、HTTP 服务等）也可以实现此接口
type ActivityProvider interface {
	// Name 返回特征服务名称（用于日志/监控）
	Name() string

	// BatchLastActive 批量获取最近活跃时间；结果里缺失的 ID 表示无此特征
	BatchLastActive(ctx context.Context, userIDs []string) (map[string]time.Time, error)

	// Close 关闭特征服务，释放资源
	Close() error
}
