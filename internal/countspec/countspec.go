package countspec

import (
	"strconv"
	"strings"
)

// 后缀字母表（有序）：索引决定幂次。
// 裸字母 => 二进制：2^(10*(idx+1))；字母+B => 十进制：10^(idx+1)。
const suffixes = "KMGTPEZY"

// ParseError 表示数量字面量不符合语法。
//
// 契约：Error() 必须原样返回原始字面量（调用方会把它拼进
// "illegal line count -- {literal}"，逐字回显是对外行为）。
type ParseError struct {
	Literal string
}

func (e *ParseError) Error() string { return e.Literal }

// Parse 把人类可读的数量字面量解析为带符号整数。
//
// 语法（对行数与字节数一致）：
//   - 可选前导 '-'/'+'（折入符号）
//   - 十进制数字主体
//   - 可选单位后缀：
//     'b'        => 512（经典块）
//     'kB'       => 1000
//     '<L>B'     => 10^(idx+1)，L ∈ KMGTPEZY
//     '<L>'      => 2^(10*(idx+1))，L ∈ KMGTPEZY
//
// 策略（统一采用宽松变体）：0 与负数字面量均合法；
// 负数的"除末尾 N 个外全部"语义由抽取层解释。
func Parse(raw string) (int64, error) {
	if raw == "" {
		return 0, &ParseError{Literal: raw}
	}

	body := raw
	var scale int64 = 1

	switch last := raw[len(raw)-1]; {
	case last == 'b':
		scale = 512
		body = raw[:len(raw)-1]

	case last == 'B':
		if len(raw) < 2 {
			return 0, &ParseError{Literal: raw}
		}
		u := raw[len(raw)-2]
		if u == 'k' {
			scale = 1000
		} else {
			idx := strings.IndexByte(suffixes, u)
			if idx < 0 {
				return 0, &ParseError{Literal: raw}
			}
			scale = pow10(idx + 1)
		}
		body = raw[:len(raw)-2]

	case last >= '0' && last <= '9':
		// 无后缀。

	default:
		// 裸后缀大小写均可（"3k" 与 "3K" 同为 1024 倍）。
		idx := strings.IndexByte(suffixes, upper(last))
		if idx < 0 {
			return 0, &ParseError{Literal: raw}
		}
		scale = int64(1) << (10 * (idx + 1))
		body = raw[:len(raw)-1]
	}

	n, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, &ParseError{Literal: raw}
	}
	return scale * n, nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func pow10(n int) int64 {
	var v int64 = 1
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
