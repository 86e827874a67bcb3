package engine

import (
	"encoding/base64"
	"strconv"
	"time"

	"github.com/rushteam/matchkit/core"
)

// 游标是无状态的不透明串：base64(最后一条结果的创建时间 Unix 毫秒)。
// 不需要服务端会话，下一页的召回从这个时间点严格之后开始。

// EncodeCursor 把创建时间编码为游标。
func EncodeCursor(t time.Time) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(t.UnixMilli(), 10)))
}

// DecodeCursor 解码游标；空串返回零值时间（首页）。
func DecodeCursor(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return time.Time{}, errInvalidCursor
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || ms < 0 {
		return time.Time{}, errInvalidCursor
	}
	return time.UnixMilli(ms), nil
}

var errInvalidCursor = core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "engine: malformed cursor")
