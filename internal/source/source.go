package source

import (
	"bufio"
	"io"
	"os"

	"github.com/John-Robertt/hed/internal/infra/fsx"
)

// StdinName 是标准输入的源标识（头部输出时原样使用）。
const StdinName = "-"

// Facts 是一个源的预先测得事实，仅在负数数量时需要。
// 对不可测尺寸的源（STDIN），约定哨兵值 ByteSize=0、TotalLines=1，
// 负数数量据此退化为输出空/至多一行，而不是报错。
type Facts struct {
	ByteSize   int64
	TotalLines int64
}

// Source 是对输入源的最小抽象：顺序字节读 + 可选的尺寸/行数测量。
//
// 测量与抽取是显式的两阶段协议：Measure 不消耗 Open 返回的流；
// 文件源通过"元数据尺寸 + 专门的计数遍历 + 重新打开"实现，
// STDIN 源直接返回哨兵事实。
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
	Measure() (Facts, error)
}

// New 根据源标识构造 Source："-" 为标准输入，其余视为文件路径。
// stdin 可注入（测试用）；传 nil 则使用 os.Stdin。
func New(name string, stdin io.Reader) Source {
	if name == StdinName {
		if stdin == nil {
			stdin = os.Stdin
		}
		return &StdinSource{r: stdin}
	}
	return &FileSource{path: name}
}

// FileSource 是具名文件源（能力全集：顺序读 + 尺寸 + 行数）。
type FileSource struct {
	path string
}

func (s *FileSource) Name() string { return s.path }

func (s *FileSource) Open() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	return newBufferedCloser(f, 0), nil
}

// Measure 返回文件的字节尺寸（元数据）与行数（专门的计数遍历）。
// 行的定义：到 '\n'（含）为止的字节；文件末尾无终结符的残行也算一行。
func (s *FileSource) Measure() (Facts, error) {
	size, err := fsx.ProbeRegular(s.path)
	if err != nil {
		return Facts{}, err
	}
	lines, err := countLines(s.path)
	if err != nil {
		return Facts{}, err
	}
	return Facts{ByteSize: size, TotalLines: lines}, nil
}

func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var (
		n        int64
		lastByte byte = '\n'
	)
	buf := make([]byte, 64*1024)
	for {
		m, err := f.Read(buf)
		if m > 0 {
			for _, b := range buf[:m] {
				if b == '\n' {
					n++
				}
			}
			lastByte = buf[m-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	// 残行（最后一个字节不是 '\n'）也计为一行。
	if lastByte != '\n' {
		n++
	}
	return n, nil
}

// StdinSource 是标准输入源（能力：仅顺序读）。
type StdinSource struct {
	r io.Reader
}

func (s *StdinSource) Name() string { return StdinName }

func (s *StdinSource) Open() (io.ReadCloser, error) {
	return newBufferedCloser(io.NopCloser(s.r), 0), nil
}

// Measure 返回哨兵事实：尺寸无法在不消耗流的前提下得知。
func (s *StdinSource) Measure() (Facts, error) {
	return Facts{ByteSize: 0, TotalLines: 1}, nil
}

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c io.Closer
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

func (b *bufferedCloser) Close() error { return b.c.Close() }
