package feature

import (
	"context"
	"fmt"
	"strconv"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// FeastProvider 是基于官方 Feast Go SDK 的活跃度特征实现（gRPC）。
//
// 特征约定：Feature 指向一个 epoch 秒的在线特征
// （例如 "user_activity:last_active_at"），实体键默认 "user_id"。
type FeastProvider struct {
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// Feature 活跃时间特征的全名
	Feature string

	// EntityKey 实体键，空值使用 "user_id"
	EntityKey string
}

// NewFeastProvider 创建一个 Feast gRPC 活跃度特征客户端。
func NewFeastProvider(host string, port int, project, featureName string) (*FeastProvider, error) {
	if port == 0 {
		port = 6565 // Feast Feature Server 默认 gRPC 端口
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	if featureName == "" {
		featureName = "user_activity:last_active_at"
	}
	return &FeastProvider{
		client:  client,
		Project: project,
		Feature: featureName,
	}, nil
}

func (p *FeastProvider) Name() string { return "feature.feast" }

// BatchLastActive 实现 ActivityProvider 接口。
func (p *FeastProvider) BatchLastActive(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	if len(userIDs) == 0 {
		return map[string]time.Time{}, nil
	}

	entityKey := p.EntityKey
	if entityKey == "" {
		entityKey = "user_id"
	}

	entities := make([]feastsdk.Row, len(userIDs))
	for i, id := range userIDs {
		entities[i] = feastsdk.Row{entityKey: feastsdk.StrVal(id)}
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{p.Feature},
		Entities: entities,
		Project:  p.Project,
	}

	resp, err := p.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	out := make(map[string]time.Time, len(rows))
	for i, row := range rows {
		if i >= len(userIDs) {
			break
		}
		val, ok := row[p.Feature]
		if !ok || val == nil {
			continue
		}
		if sec := asEpochSeconds(val); sec > 0 {
			out[userIDs[i]] = time.Unix(sec, 0)
		}
	}
	return out, nil
}

// Close 实现 ActivityProvider 接口。
// 官方 SDK 没有显式的 Close，连接由 gRPC 库管理。
func (p *FeastProvider) Close() error {
	p.client = nil
	return nil
}

// asEpochSeconds 从 SDK 的 Value 中提取 epoch 秒，兼容 int64/double/string 编码。
func asEpochSeconds(v *feasttypes.Value) int64 {
	switch {
	case v.GetInt64Val() != 0:
		return v.GetInt64Val()
	case v.GetInt32Val() != 0:
		return int64(v.GetInt32Val())
	case v.GetDoubleVal() != 0:
		return int64(v.GetDoubleVal())
	case v.GetStringVal() != "":
		if sec, err := strconv.ParseInt(v.GetStringVal(), 10, 64); err == nil {
			return sec
		}
	}
	return 0
}

// 确保 FeastProvider 实现了 ActivityProvider 接口
var _ ActivityProvider = (*FeastProvider)(nil)
