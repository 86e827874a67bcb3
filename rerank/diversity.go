package rerank

import (
	"context"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/utils"
)

// CityDiversity 是同城多样性重排：同一城市不允许连续出现三次。
// 走到第三个连续同城时，向前找最近的异城候选，与它交换位置——异城的
// 插到第二个同城之后，被挤出的那个落到交换点原来的前方位置。
//
// 只做单次前向扫描：前方找不到异城候选就放行整段连续，多样性是
// 尽力而为，绝不阻塞。城市未知的候选不参与连续计数。
type CityDiversity struct{}

func (n *CityDiversity) Name() string        { return "rerank.city_diversity" }
func (n *CityDiversity) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *CityDiversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) < 3 {
		return items, nil
	}

	for i := 2; i < len(items); i++ {
		run := itemCity(items[i])
		if run == "" {
			continue
		}
		if itemCity(items[i-1]) != run || itemCity(items[i-2]) != run {
			continue
		}

		// 第三个连续同城：向前找最近的异城候选交换
		for j := i + 1; j < len(items); j++ {
			if itemCity(items[j]) != run {
				items[i], items[j] = items[j], items[i]
				items[i].PutLabel("diversity_swap", utils.Label{
					Value:  run,
					Source: "rerank",
				})
				break
			}
		}
	}
	return items, nil
}

func itemCity(it *core.Item) string {
	if it == nil || it.Candidate == nil {
		return ""
	}
	return it.Candidate.NormalizedCity()
}
