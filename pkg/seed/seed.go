// Package seed 提供可复现的伪随机：从请求输入推导确定性种子，驱动一个小型
// xorshift 发生器。相同的 viewer/cursor/池大小 必须产生相同的乱序结果，
// 这是可复现性要求，不是真随机。
package seed

// New 从 viewer、游标与候选池大小推导 32 位种子。
// cursor 为空时按 "root"（首页）参与散列。
func New(viewerID, cursor string, poolSize int) uint32 {
	if cursor == "" {
		cursor = "root"
	}

	// FNV-1a
	h := uint32(2166136261)
	mix := func(s string) {
		for i := 0; i < len(s); i++ {
			h ^= uint32(s[i])
			h *= 16777619
		}
	}
	mix(viewerID)
	mix("|")
	mix(cursor)
	h ^= uint32(poolSize)
	h *= 16777619

	if h == 0 {
		h = 0x9e3779b9 // xorshift 不接受全零状态
	}
	return h
}

// Rand 是 xorshift32 发生器：状态仅 4 字节，足够驱动 band 内乱序。
// 注意：跨语言复现需要逐位一致的实现，不可替换为 math/rand。
type Rand struct {
	state uint32
}

func NewRand(s uint32) *Rand {
	if s == 0 {
		s = 0x9e3779b9
	}
	return &Rand{state: s}
}

func (r *Rand) Next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Intn 返回 [0, n) 内的值；n <= 0 时返回 0。
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint32(n))
}

// Shuffle 对 s 做 Fisher-Yates 乱序，顺序完全由 r 的状态决定。
func Shuffle[T any](r *Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
