package engine

import "github.com/rushteam/matchkit/core"

// paginate 从重排结果里切一页。
//
// 游标语义：nextCursor 编码页内最后一条的创建时间；切片短于 limit
// 说明超量窗口里没有更多候选，此时 hasMore 为 false 且游标为空。
// 分页对新增友好、对删除不保证全局完整（页间有新资料创建时可能漏/重）。
func paginate(items []*core.Item, limit int) (page []*core.Item, nextCursor *string, hasMore bool) {
	if limit <= 0 || len(items) == 0 {
		return nil, nil, false
	}
	page = items
	if len(page) > limit {
		page = page[:limit]
	}
	if len(page) < limit {
		return page, nil, false
	}

	last := page[len(page)-1]
	if last == nil || last.Candidate == nil {
		return page, nil, false
	}
	cursor := EncodeCursor(last.Candidate.CreatedAt)
	return page, &cursor, true
}

// summarize 把 Item 压成进响应体/缓存的轻量摘要。
func summarize(items []*core.Item) []core.CandidateSummary {
	out := make([]core.CandidateSummary, 0, len(items))
	for _, it := range items {
		if it == nil || it.Candidate == nil {
			continue
		}
		c := it.Candidate
		out = append(out, core.CandidateSummary{
			ID:           c.ID,
			FullName:     c.FullName,
			City:         c.City,
			Images:       c.Images,
			Score:        it.Score,
			CreatedAt:    c.CreatedAt,
			LastActiveAt: c.LastActiveAt,
			Plan:         c.Plan,
		})
	}
	return out
}

// paginateSummaries 是缓存命中路径的切页：对已物化的摘要列表做同样的
// 游标/hasMore 推导。
func paginateSummaries(payload []core.CandidateSummary, limit int) (page []core.CandidateSummary, nextCursor *string, hasMore bool) {
	if limit <= 0 || len(payload) == 0 {
		return nil, nil, false
	}
	page = payload
	if len(page) > limit {
		page = page[:limit]
	}
	if len(page) < limit {
		return page, nil, false
	}
	cursor := EncodeCursor(page[len(page)-1].CreatedAt)
	return page, &cursor, true
}
