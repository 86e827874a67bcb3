package core

import (
	"context"
	"time"
)

// 本文件定义引擎消费的协作方只读接口。认证/资料 CRUD/消息等都在引擎之外，
// 引擎只通过这些窄接口读取数据。

// Block 是一条拉黑记录（方向敏感）。
type Block struct {
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
}

// Match 是一条双向匹配记录。
type Match struct {
	UserA  string `json:"user_a"`
	UserB  string `json:"user_b"`
	Status string `json:"status"`
}

// Decision 是 viewer 对某个候选人作出的一次决策（like/skip）。
type Decision struct {
	TargetID  string    `json:"target_id"`
	Action    string    `json:"action"`
	DecidedAt time.Time `json:"decided_at"`
}

// ProfileRepository 提供按创建时间分页的候选人读取。
type ProfileRepository interface {
	// ListProfilesCreatedAfter 返回创建时间严格晚于 after 的资料，
	// 按创建时间升序，至多 limit 条。
	ListProfilesCreatedAfter(ctx context.Context, after time.Time, limit int) ([]*Candidate, error)

	// GetProfile 读取单个资料；不存在时返回 ErrProfileNotFound。
	GetProfile(ctx context.Context, id string) (*Candidate, error)
}

// BlockStore 提供拉黑记录读取，返回 viewer 在任意一侧的记录。
type BlockStore interface {
	BlocksInvolving(ctx context.Context, userID string) ([]Block, error)
}

// MatchStore 提供匹配记录读取，返回 viewer 在任意一侧的记录。
type MatchStore interface {
	MatchesInvolving(ctx context.Context, userID string) ([]Match, error)
}

// DecisionStore 提供 viewer 在 since 之后作出的决策记录。
type DecisionStore interface {
	RecentDecisions(ctx context.Context, userID string, since time.Time) ([]Decision, error)
}

// ExclusionSet 是一次请求内对某个 viewer 无效的候选人 ID 集合：
// 自己、拉黑（双向）、已匹配、近期已决策。每个请求重建，不持久化。
type ExclusionSet map[string]struct{}

func (s ExclusionSet) Add(id string) {
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

func (s ExclusionSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}
