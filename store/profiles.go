package store

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/rushteam/matchkit/core"
)

// ProfileStore 基于 core.KeyValueStore 实现 ProfileRepository：
// 资料本体以 JSON 存在 {前缀}:{id}，创建时间线存在一个 zset 里
// （member 为 ID，score 为创建时间 Unix 毫秒），按时间区间分页读取。
//
// 生产部署里资料库通常是托管文档存储，这个实现服务于单机部署、
// 种子数据与测试。
type ProfileStore struct {
	store core.KeyValueStore

	// Prefix 空值使用 "profile"
	Prefix string
}

func NewProfileStore(s core.KeyValueStore) *ProfileStore {
	return &ProfileStore{store: s}
}

func (p *ProfileStore) prefix() string {
	if p.Prefix == "" {
		return "profile"
	}
	return p.Prefix
}

func (p *ProfileStore) profileKey(id string) string {
	return p.prefix() + ":" + id
}

func (p *ProfileStore) timelineKey() string {
	return p.prefix() + ":created"
}

// PutProfile 写入/覆盖一条资料并登记创建时间线。
func (p *ProfileStore) PutProfile(ctx context.Context, c *core.Candidate) error {
	if c == nil || c.ID == "" {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "profile: missing id")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, p.profileKey(c.ID), data); err != nil {
		return err
	}
	return p.store.ZAdd(ctx, p.timelineKey(), float64(c.CreatedAt.UnixMilli()), c.ID)
}

// GetProfile 实现 core.ProfileRepository。
func (p *ProfileStore) GetProfile(ctx context.Context, id string) (*core.Candidate, error) {
	data, err := p.store.Get(ctx, p.profileKey(id))
	if core.IsStoreNotFound(err) {
		return nil, core.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	var c core.Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListProfilesCreatedAfter 实现 core.ProfileRepository：
// 创建时间严格晚于 after，按创建时间升序，至多 limit 条。
func (p *ProfileStore) ListProfilesCreatedAfter(ctx context.Context, after time.Time, limit int) ([]*core.Candidate, error) {
	// zset score 是毫秒，+1 实现严格晚于
	min := float64(after.UnixMilli() + 1)
	ids, err := p.store.ZRangeByScore(ctx, p.timelineKey(), min, math.MaxFloat64)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = p.profileKey(id)
	}
	rows, err := p.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Candidate, 0, len(ids))
	for i, id := range ids {
		data, ok := rows[keys[i]]
		if !ok {
			continue // 时间线里有但本体已删，跳过
		}
		var c core.Candidate
		if err := json.Unmarshal(data, &c); err != nil {
			continue
		}
		if c.ID == "" {
			c.ID = id
		}
		out = append(out, &c)
	}
	return out, nil
}

// 确保 ProfileStore 实现了 core.ProfileRepository 接口
var _ core.ProfileRepository = (*ProfileStore)(nil)
