package core

import (
	"strings"
	"time"

	"github.com/rushteam/matchkit/pkg/utils"
)

// Candidate 是候选人资料的只读投影，由 Profile Repository 持有，引擎从不回写。
type Candidate struct {
	ID           string
	FullName     string
	City         string
	Images       []string
	CreatedAt    time.Time
	LastActiveAt time.Time // 零值表示活跃时间未知
	Plan         string    // 订阅档位：premium / plus / free（或空）
	Interests    []string
	Gender       string
	LookingFor   string // 期望对象性别，空值表示未填写
}

// NormalizedCity 返回归一化后的城市名，用于同城匹配与多样性约束。
func (c *Candidate) NormalizedCity() string {
	return strings.ToLower(strings.TrimSpace(c.City))
}

// Item 是排序链路中的统一承载结构：候选人、分数、分项明细、标签。
// Components 按信号记录每一项贡献，用于 explain 与测试断言；
// Item 只在一次排序 pass 内存活，不做持久化。
type Item struct {
	Candidate  *Candidate
	Score      int
	Components map[string]int
	Labels     map[string]utils.Label
}

func NewItem(c *Candidate) *Item {
	return &Item{
		Candidate:  c,
		Score:      0,
		Components: make(map[string]int),
		Labels:     make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
