package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/filter"
	"github.com/rushteam/matchkit/store"
)

var testBase = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

// fakeRepo 是切片支撑的资料库，按创建时间升序返回严格晚于 after 的资料。
type fakeRepo struct {
	profiles []*core.Candidate
}

func (f *fakeRepo) GetProfile(_ context.Context, id string) (*core.Candidate, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListProfilesCreatedAfter(_ context.Context, after time.Time, limit int) ([]*core.Candidate, error) {
	var out []*core.Candidate
	for _, p := range f.profiles {
		if p.CreatedAt.After(after) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type failingBlocks struct{}

func (failingBlocks) BlocksInvolving(context.Context, string) ([]core.Block, error) {
	return nil, errors.New("blocks unavailable")
}

type staticMatches struct{ ids []string }

func (s staticMatches) MatchesInvolving(_ context.Context, viewerID string) ([]core.Match, error) {
	out := make([]core.Match, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, core.Match{UserA: viewerID, UserB: id, Status: "active"})
	}
	return out, nil
}

func testProfiles(n int) []*core.Candidate {
	cities := []string{"Shanghai", "Beijing", "Chengdu"}
	out := make([]*core.Candidate, 0, n+1)
	out = append(out, &core.Candidate{
		ID:         "viewer",
		City:       "Shanghai",
		Gender:     "male",
		LookingFor: "female",
		Interests:  []string{"music", "travel"},
		CreatedAt:  testBase,
	})
	for i := 0; i < n; i++ {
		out = append(out, &core.Candidate{
			ID:         fmt.Sprintf("cand-%03d", i),
			City:       cities[i%len(cities)],
			Gender:     "female",
			LookingFor: "male",
			Plan:       map[bool]string{true: "premium", false: "free"}[i%7 == 0],
			Interests:  []string{"music"},
			CreatedAt:  testBase.Add(time.Duration(i+1) * time.Minute),
		})
	}
	return out
}

func newTestEngine(n int) *Engine {
	return &Engine{
		Profiles: &fakeRepo{profiles: testProfiles(n)},
		Now:      func() time.Time { return testBase.Add(24 * time.Hour) },
	}
}

func ids(resp *Response) []string {
	out := make([]string, 0, len(resp.Recommendations))
	for _, r := range resp.Recommendations {
		out = append(out, r.ID)
	}
	return out
}

func TestRecommendNeverReturnsSelf(t *testing.T) {
	e := newTestEngine(60)
	resp, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("expected recommendations")
	}
	for _, id := range ids(resp) {
		if id == "viewer" {
			t.Fatal("viewer must never appear in recommendations")
		}
	}
}

func TestRecommendAppliesExclusions(t *testing.T) {
	e := newTestEngine(60)
	e.Resolver = &filter.Resolver{
		Matches: staticMatches{ids: []string{"cand-000", "cand-001", "cand-002"}},
	}

	resp, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 50})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, id := range ids(resp) {
		if id == "cand-000" || id == "cand-001" || id == "cand-002" {
			t.Fatalf("matched candidate %s leaked into results", id)
		}
	}
}

func TestRecommendDegradedExclusionStillRanks(t *testing.T) {
	e := newTestEngine(30)
	e.Resolver = &filter.Resolver{Blocks: failingBlocks{}}

	resp, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatalf("degraded lookups must not fail the request: %v", err)
	}
	if resp.Count == 0 {
		t.Fatal("expected recommendations despite degraded exclusion source")
	}
	for _, id := range ids(resp) {
		if id == "viewer" {
			t.Fatal("self exclusion must survive degradation")
		}
	}
}

func TestRecommendDeterministicForSameViewer(t *testing.T) {
	e := newTestEngine(80)

	a, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatal(err)
	}

	ai, bi := ids(a), ids(b)
	if len(ai) != len(bi) {
		t.Fatalf("result sizes differ: %d vs %d", len(ai), len(bi))
	}
	for i := range ai {
		if ai[i] != bi[i] {
			t.Fatalf("order differs at %d: %s vs %s", i, ai[i], bi[i])
		}
	}
	if a.Meta.Seed == "" || a.Meta.Seed != b.Meta.Seed {
		t.Fatalf("seed must be stable: %q vs %q", a.Meta.Seed, b.Meta.Seed)
	}
}

func TestRecommendLimitClamp(t *testing.T) {
	e := newTestEngine(120)

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultLimit},
		{-3, 1},
		{5, 5},
		{500, MaxLimit},
	}
	for _, tt := range tests {
		resp, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: tt.limit})
		if err != nil {
			t.Fatalf("limit=%d: %v", tt.limit, err)
		}
		if resp.Count != tt.want {
			t.Fatalf("limit=%d: count = %d, want %d", tt.limit, resp.Count, tt.want)
		}
	}
}

func TestRecommendPagination(t *testing.T) {
	e := newTestEngine(15)

	page1, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page1.Count != 10 || !page1.HasMore || page1.Cursor == nil {
		t.Fatalf("full page must set hasMore+cursor: count=%d hasMore=%v cursor=%v",
			page1.Count, page1.HasMore, page1.Cursor)
	}

	cursorTime, err := DecodeCursor(*page1.Cursor)
	if err != nil {
		t.Fatalf("engine produced undecodable cursor: %v", err)
	}

	page2, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 10, Cursor: *page1.Cursor})
	if err != nil {
		t.Fatal(err)
	}
	// 下一页的召回严格晚于游标时间点
	for _, r := range page2.Recommendations {
		if !r.CreatedAt.After(cursorTime) {
			t.Fatalf("candidate %s created at %v, not after cursor %v", r.ID, r.CreatedAt, cursorTime)
		}
	}
	if page2.HasMore {
		if page2.Cursor == nil {
			t.Fatal("hasMore implies a cursor")
		}
	} else if page2.Cursor != nil {
		t.Fatal("exhausted page must not carry a cursor")
	}
}

func TestRecommendCacheRoundTrip(t *testing.T) {
	now := testBase.Add(24 * time.Hour)
	clock := func() time.Time { return now }

	ms := store.NewMemoryStore()
	defer ms.Close()
	cache := store.NewRecommendCache(ms)
	cache.Now = clock

	e := newTestEngine(80)
	e.Cache = cache
	e.CacheTTL = 10 * time.Minute
	e.Now = clock

	first, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatal(err)
	}
	if first.Meta.Cached {
		t.Fatal("first canonical request must compute")
	}

	second, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Meta.Cached {
		t.Fatal("second canonical request must hit the cache")
	}
	if second.Meta.Seed != first.Meta.Seed || second.Meta.Algorithm != first.Meta.Algorithm {
		t.Fatalf("cached meta must be replayed: %+v vs %+v", second.Meta, first.Meta)
	}

	fi, si := ids(first), ids(second)
	if len(fi) != len(si) {
		t.Fatalf("cached page size differs: %d vs %d", len(fi), len(si))
	}
	for i := range fi {
		if fi[i] != si[i] {
			t.Fatalf("cached order differs at %d: %s vs %s", i, fi[i], si[i])
		}
	}

	// 过期后重算
	now = now.Add(11 * time.Minute)
	third, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"})
	if err != nil {
		t.Fatal(err)
	}
	if third.Meta.Cached {
		t.Fatal("expired entry must trigger recompute")
	}
}

func TestRecommendNonCanonicalSkipsCache(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	e := newTestEngine(80)
	e.Cache = store.NewRecommendCache(ms)

	// 预热规范首页
	if _, err := e.Recommend(context.Background(), Request{ViewerID: "viewer"}); err != nil {
		t.Fatal(err)
	}

	// 非默认页大小与带游标的请求都不走缓存
	withLimit, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if withLimit.Meta.Cached {
		t.Fatal("non-default limit must bypass the cache")
	}

	first, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if first.Cursor != nil {
		withCursor, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 10, Cursor: *first.Cursor})
		if err != nil {
			t.Fatal(err)
		}
		if withCursor.Meta.Cached {
			t.Fatal("cursor request must bypass the cache")
		}
	}
}

func TestRecommendUnknownViewer(t *testing.T) {
	e := newTestEngine(5)
	_, err := e.Recommend(context.Background(), Request{ViewerID: "ghost"})
	if !core.IsNotFound(err) {
		t.Fatalf("want NOT_FOUND, got %v", err)
	}
}

func TestRecommendMalformedCursor(t *testing.T) {
	e := newTestEngine(5)
	_, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Cursor: "not base64 at all!!"})
	if !core.IsInvalidInput(err) {
		t.Fatalf("want INVALID_INPUT, got %v", err)
	}
}

func TestRecommendRulesApply(t *testing.T) {
	e := newTestEngine(60)
	e.Rules = []string{`candidate.city == "beijing"`}

	resp, err := e.Recommend(context.Background(), Request{ViewerID: "viewer", Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Count == 0 {
		t.Fatal("expected beijing candidates")
	}
	for _, r := range resp.Recommendations {
		if r.City != "Beijing" {
			t.Fatalf("rule leak: got city %q", r.City)
		}
	}
}
