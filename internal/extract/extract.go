package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/John-Robertt/hed/internal/domain"
	"github.com/John-Robertt/hed/internal/source"
)

// SinkError 表示 sink（输出端）写入失败。
// 与源侧读错误严格区分：sink 坏了意味着整个运行必须中止，
// 而源侧错误只影响当前源。
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("写入输出失败：%v", e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// IsSink 判断 err 是否为 sink 写入错误。
func IsSink(err error) bool {
	var e *SinkError
	return errors.As(err, &e)
}

// Resolve 把带符号数量折算为实际输出上限 n。
// 负数表示"除末尾 |magnitude| 个单位外全部"，不足则为 0。
func Resolve(magnitude, total int64) int64 {
	if magnitude >= 0 {
		return magnitude
	}
	n := total + magnitude
	if n < 0 {
		return 0
	}
	return n
}

// WriteHeader 输出源头部 `==> name <==`。
// first=false 时前置一个空行（第一个源之外都要）；
// 头部必须先于该源的内容写入 sink（无缓冲边界）。
func WriteHeader(w io.Writer, name string, first bool) error {
	prefix := "\n"
	if first {
		prefix = ""
	}
	if _, err := fmt.Fprintf(w, "%s==> %s <==\n", prefix, name); err != nil {
		return &SinkError{Err: err}
	}
	return nil
}

// Extract 从 r 流式输出由 spec 决定的前缀到 w，返回写入的内容字节数。
//
// facts 仅在 spec.Magnitude < 0 时被使用（负数反转需要总量）。
// 字节按原样透传，不做任何转码或丢弃——字节数是对外契约。
func Extract(r io.Reader, spec domain.CountSpec, facts source.Facts, w io.Writer) (int64, error) {
	switch spec.Unit {
	case domain.UnitBytes:
		return copyBytes(w, r, Resolve(spec.Magnitude, facts.ByteSize))
	default:
		return copyLines(w, r, Resolve(spec.Magnitude, facts.TotalLines))
	}
}

// copyBytes 输出最多 n 个字节（源更短则更少）。
// 读错误与写错误分开上报：写错误包装为 SinkError。
func copyBytes(w io.Writer, r io.Reader, n int64) (int64, error) {
	var written int64
	buf := make([]byte, 32*1024)
	for written < n {
		chunk := int64(len(buf))
		if rest := n - written; rest < chunk {
			chunk = rest
		}
		m, rerr := r.Read(buf[:chunk])
		if m > 0 {
			wn, werr := w.Write(buf[:m])
			written += int64(wn)
			if werr != nil {
				return written, &SinkError{Err: werr}
			}
			if wn < m {
				return written, &SinkError{Err: io.ErrShortWrite}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, rerr
		}
	}
	return written, nil
}

// copyLines 输出最多 n 行。行 = 到 '\n'（含）为止的字节；
// 源在无终结符处结束时，残行同样计数并输出。
func copyLines(w io.Writer, r io.Reader, n int64) (int64, error) {
	br := bufio.NewReader(r)
	var written int64
	for i := int64(0); i < n; i++ {
		line, rerr := br.ReadBytes('\n')
		if len(line) > 0 {
			wn, werr := w.Write(line)
			written += int64(wn)
			if werr != nil {
				return written, &SinkError{Err: werr}
			}
			if wn < len(line) {
				return written, &SinkError{Err: io.ErrShortWrite}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, rerr
		}
	}
	return written, nil
}
