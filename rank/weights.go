package rank

import "time"

// 信号权重表。编译期常量，不做运行时配置：调权即发版，保证同一算法版本
// 下分数可复现。

const (
	// 双向性别偏好都命中时的奖励；与单边奖励互斥，不叠加
	mutualPreferenceBonus = 12

	// 仅一侧偏好命中时的奖励
	oneSidedPreferenceBonus = 6

	// 归一化城市完全一致
	cityBonus = 5

	// 共同兴趣：每个交集标签的权重与总贡献上限（防标签刷分）
	interestTagWeight = 2
	interestCap       = 40
)

// recencyTiers 按最近活跃时间分档，越近奖励越高；窗口外或未知活跃时间为 0。
// 顺序必须从最近到最远。
var recencyTiers = []struct {
	Within time.Duration
	Bonus  int
}{
	{15 * time.Minute, 9},
	{2 * time.Hour, 6},
	{24 * time.Hour, 3},
}

// planBoost 是订阅档位的附加分，在基础打分后的第二遍统一加上。
// 未知档位不加分也不扣分。
var planBoost = map[string]int{
	"premium": 10,
	"plus":    5,
}

// 分项明细在 Components 里的命名
const (
	ComponentPreference = "preference"
	ComponentCity       = "city"
	ComponentInterests  = "interests"
	ComponentRecency    = "recency"
	ComponentPlan       = "plan"
)
