package domain

// Unit 表示数量的计量单位（行或字节）。
type Unit int

const (
	UnitLines Unit = iota
	UnitBytes
)

func (u Unit) String() string {
	if u == UnitBytes {
		return "bytes"
	}
	return "lines"
}

// CountSpec 是一次运行的已解析数量（不再是原始字面量）。
//
// 不变量：Magnitude 永远是按单位折算后的带符号整数；
// 负数表示"除最后 |Magnitude| 个单位外全部输出"。
type CountSpec struct {
	Unit      Unit
	Magnitude int64
}

// HeaderPolicy 决定什么时候在源内容前输出 `==> name <==` 头部。
type HeaderPolicy int

const (
	// HeaderMultipleOnly：仅当请求的源数量 > 1 时输出头部（默认）。
	// 注意：按"请求的源列表长度"判定，打开失败的源不改变该计数。
	HeaderMultipleOnly HeaderPolicy = iota
	// HeaderAlways：总是输出头部（-v）。
	HeaderAlways
	// HeaderNever：从不输出头部（-q）。
	HeaderNever
)

// Applies 判断本次运行（共请求 requested 个源）是否需要头部。
func (p HeaderPolicy) Applies(requested int) bool {
	switch p {
	case HeaderAlways:
		return true
	case HeaderNever:
		return false
	default:
		return requested > 1
	}
}
