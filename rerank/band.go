package rerank

import (
	"context"
	"fmt"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/seed"
	"github.com/rushteam/matchkit/pkg/utils"
)

// DefaultBandWidth 是分带宽度：floor(score/5) 相同的候选人视为同档。
const DefaultBandWidth = 5

// SeedLabel 是写入 RecommendContext 的乱序种子标签 key，
// 引擎从这里取值放进响应 meta。
const SeedLabel = "shuffle_seed"

// BandShuffle 把已按分数降序排好的候选按 floor(score/bandWidth) 分带，
// 带内用种子化的伪随机乱序，再按带降序拼接：数量级排序保留，细粒度的
// 同档次序被公平打散。
//
// 种子由 hash(viewerID, cursor-or-"root", poolSize) 确定性推导，
// 相同输入必然得到相同次序。
type BandShuffle struct {
	// BandWidth <=0 时取 DefaultBandWidth
	BandWidth int
}

func (n *BandShuffle) Name() string        { return "rerank.band_shuffle" }
func (n *BandShuffle) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *BandShuffle) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	width := n.BandWidth
	if width <= 0 {
		width = DefaultBandWidth
	}

	viewerID, cursor := "", ""
	if rctx != nil {
		viewerID, cursor = rctx.ViewerID, rctx.Cursor
	}
	sd := seed.New(viewerID, cursor, len(items))
	if rctx != nil {
		rctx.PutLabel(SeedLabel, utils.Label{
			Value:  fmt.Sprintf("%08x", sd),
			Source: "rerank",
		})
	}

	if len(items) < 2 {
		return items, nil
	}

	rng := seed.NewRand(sd)

	// 输入已按分数降序，同带的候选必然连续；逐段乱序即可
	start := 0
	for i := 1; i <= len(items); i++ {
		if i < len(items) && band(items[i], width) == band(items[start], width) {
			continue
		}
		if i-start > 1 {
			seed.Shuffle(rng, items[start:i])
		}
		start = i
	}
	return items, nil
}

func band(it *core.Item, width int) int {
	if it == nil {
		return 0
	}
	if it.Score < 0 {
		// 信号全部非负，这里只是防御负分落错带
		return (it.Score - width + 1) / width
	}
	return it.Score / width
}
