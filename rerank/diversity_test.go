package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/matchkit/core"
)

func itemInCity(id, city string) *core.Item {
	return core.NewItem(&core.Candidate{ID: id, City: city})
}

func cities(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Candidate.NormalizedCity()
	}
	return out
}

func assertNoTripleRun(t *testing.T, items []*core.Item) {
	t.Helper()
	cs := cities(items)
	for i := 2; i < len(cs); i++ {
		if cs[i] != "" && cs[i] == cs[i-1] && cs[i] == cs[i-2] {
			t.Fatalf("three consecutive %q at %d: %v", cs[i], i, cs)
		}
	}
}

func TestCityDiversityBreaksRuns(t *testing.T) {
	tests := []struct {
		name   string
		cities []string
	}{
		{"run at head", []string{"sh", "sh", "sh", "bj", "sh"}},
		{"run in middle", []string{"bj", "sh", "sh", "sh", "gz", "sh"}},
		{"two separate runs", []string{"sh", "sh", "sh", "bj", "bj", "bj", "gz", "sh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []*core.Item
			for i, c := range tt.cities {
				items = append(items, itemInCity(string(rune('a'+i)), c))
			}
			n := &CityDiversity{}
			out, err := n.Process(context.Background(), nil, items)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			assertNoTripleRun(t, out)
			if len(out) != len(tt.cities) {
				t.Fatalf("diversity must not drop items: %d != %d", len(out), len(tt.cities))
			}
		})
	}
}

func TestCityDiversitySingleScanResidualRun(t *testing.T) {
	// 唯一的异城候选被第一次交换消耗掉之后，尾部的连续段放行：
	// 单次前向扫描的语义就是尽力而为
	items := []*core.Item{
		itemInCity("a", "sh"),
		itemInCity("b", "sh"),
		itemInCity("c", "sh"),
		itemInCity("d", "sh"),
		itemInCity("e", "bj"),
		itemInCity("f", "sh"),
	}
	n := &CityDiversity{}
	out, _ := n.Process(context.Background(), nil, items)
	got := cities(out)
	want := []string{"sh", "sh", "bj", "sh", "sh", "sh"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cities = %v, want %v", got, want)
		}
	}
}

func TestCityDiversityAllowsRunWithoutAlternative(t *testing.T) {
	// 前方没有异城候选时放行整段连续，不做无限搜索
	items := []*core.Item{
		itemInCity("a", "bj"),
		itemInCity("b", "sh"),
		itemInCity("c", "sh"),
		itemInCity("d", "sh"),
		itemInCity("e", "sh"),
	}
	n := &CityDiversity{}
	out, _ := n.Process(context.Background(), nil, items)
	got := cities(out)
	want := []string{"bj", "sh", "sh", "sh", "sh"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order changed without available swap: %v", got)
		}
	}
}

func TestCityDiversitySwapPlacement(t *testing.T) {
	// 交换语义：异城的插到第二个同城之后，被挤出的落在交换点原位置
	items := []*core.Item{
		itemInCity("a", "sh"),
		itemInCity("b", "sh"),
		itemInCity("c", "sh"),
		itemInCity("d", "bj"),
	}
	n := &CityDiversity{}
	out, _ := n.Process(context.Background(), nil, items)
	got := ids(out)
	want := []string{"a", "b", "d", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestCityDiversityIgnoresUnknownCity(t *testing.T) {
	// 城市未知不参与连续计数，也不触发交换
	items := []*core.Item{
		itemInCity("a", ""),
		itemInCity("b", ""),
		itemInCity("c", ""),
		itemInCity("d", "sh"),
	}
	n := &CityDiversity{}
	out, _ := n.Process(context.Background(), nil, items)
	got := ids(out)
	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unknown-city run must be left alone: %v", got)
		}
	}
}

func TestTopNTruncates(t *testing.T) {
	var items []*core.Item
	for i := 0; i < 10; i++ {
		items = append(items, itemInCity(string(rune('a'+i)), "sh"))
	}
	n := &TopN{N: 4}
	out, _ := n.Process(context.Background(), nil, items)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}

	all, _ := (&TopN{N: 0}).Process(context.Background(), nil, items)
	if len(all) != 10 {
		t.Fatalf("N<=0 must not truncate, got %d", len(all))
	}
}
