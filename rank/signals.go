package rank

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/utils"
)

// Signals 是多信号打分 Node：互相偏好、同城、共同兴趣、活跃度、订阅档位。
// - 每个信号的贡献写进 item.Components，保证可解释
// - 档位加成作为第二遍附加在基础分上
// - 结束后按 分数降序、创建时间降序（新者优先） 排序
//
// 资料字段缺失（没填城市、没填偏好）时跳过对应信号，不做惩罚。
type Signals struct {
	// Now 可注入时钟，便于活跃度分档测试；默认 time.Now
	Now func() time.Time
}

func (n *Signals) Name() string        { return "rank.signals" }
func (n *Signals) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Signals) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	var viewer *core.Candidate
	if rctx != nil {
		viewer = rctx.Viewer
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	at := now()

	viewerInterests := normalizeTags(nil)
	viewerCity := ""
	if viewer != nil {
		viewerInterests = normalizeTags(viewer.Interests)
		viewerCity = viewer.NormalizedCity()
	}

	// 第一遍：基础信号
	for _, it := range items {
		if it == nil || it.Candidate == nil {
			continue
		}
		c := it.Candidate
		score := 0

		if viewer != nil {
			if b := preferenceBonus(viewer, c); b > 0 {
				score += b
				it.Components[ComponentPreference] = b
			}
			if viewerCity != "" && viewerCity == c.NormalizedCity() {
				score += cityBonus
				it.Components[ComponentCity] = cityBonus
			}
			if b := interestBonus(viewerInterests, c.Interests); b > 0 {
				score += b
				it.Components[ComponentInterests] = b
			}
		}

		if b := recencyBonus(at, c.LastActiveAt); b > 0 {
			score += b
			it.Components[ComponentRecency] = b
		}

		it.Score = score
	}

	// 第二遍：订阅档位加成
	for _, it := range items {
		if it == nil || it.Candidate == nil {
			continue
		}
		if b, ok := planBoost[strings.ToLower(it.Candidate.Plan)]; ok && b > 0 {
			it.Score += b
			it.Components[ComponentPlan] = b
		}
		it.PutLabel("rank_model", utils.Label{Value: n.Name(), Source: "rank"})
	}

	// 预乱序排序：分数降序，同分按创建时间降序（新者优先）
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Candidate.CreatedAt.After(items[j].Candidate.CreatedAt)
	})
	return items, nil
}

// preferenceBonus 计算性别偏好信号。双向命中给互相奖励，单边命中给单边
// 奖励，两个分支互斥。任一侧没填偏好就算该侧不命中。
func preferenceBonus(viewer, candidate *core.Candidate) int {
	viewerWants := prefMatches(viewer.LookingFor, candidate.Gender)
	candidateWants := prefMatches(candidate.LookingFor, viewer.Gender)
	switch {
	case viewerWants && candidateWants:
		return mutualPreferenceBonus
	case viewerWants || candidateWants:
		return oneSidedPreferenceBonus
	default:
		return 0
	}
}

func prefMatches(pref, gender string) bool {
	pref = strings.ToLower(strings.TrimSpace(pref))
	gender = strings.ToLower(strings.TrimSpace(gender))
	if pref == "" || gender == "" {
		return false
	}
	return pref == "any" || pref == gender
}

// interestBonus 按交集标签数计分并封顶。
func interestBonus(viewerTags map[string]bool, candidateTags []string) int {
	if len(viewerTags) == 0 || len(candidateTags) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(candidateTags))
	overlap := 0
	for _, t := range candidateTags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		if viewerTags[t] {
			overlap++
		}
	}
	bonus := overlap * interestTagWeight
	if bonus > interestCap {
		bonus = interestCap
	}
	return bonus
}

// recencyBonus 把最近活跃时间落到分档上；零值（未知）或窗口外为 0。
func recencyBonus(now, lastActive time.Time) int {
	if lastActive.IsZero() || lastActive.After(now) {
		return 0
	}
	idle := now.Sub(lastActive)
	for _, tier := range recencyTiers {
		if idle < tier.Within {
			return tier.Bonus
		}
	}
	return 0
}

func normalizeTags(tags []string) map[string]bool {
	out := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out[t] = true
		}
	}
	return out
}
