package config

import (
	"errors"
	"fmt"

	"github.com/John-Robertt/hed/internal/countspec"
	"github.com/John-Robertt/hed/internal/domain"
	"github.com/John-Robertt/hed/internal/source"
)

const (
	// ErrCodeBadLineCount 表示 -n 的数量字面量不符合语法。
	ErrCodeBadLineCount = "bad_line_count"
	// ErrCodeBadByteCount 表示 -c 的数量字面量不符合语法。
	ErrCodeBadByteCount = "bad_byte_count"
	// ErrCodeUsage 表示互斥参数冲突等用法错误。
	ErrCodeUsage = "usage"
)

// DefaultLineSpec 是未指定 -n/-c 时的行数默认值。
const DefaultLineSpec = "10"

// CLIArgs 只包含 CLI 暴露的入口，并保留"是否显式指定"的信息。
// 这能保证互斥判定可实现：例如 -n 与 -c 同时显式出现必须报错，
// 而默认的 lineSpec="10" 不算显式。
type CLIArgs struct {
	Files []string

	LineSpec string
	LineSet  bool

	ByteSpec string
	ByteSet  bool

	Quiet    bool
	QuietSet bool

	Verbose    bool
	VerboseSet bool
}

// EffectiveConfig 是合并并校验后的最终配置（实现层直接消费，
// 不再做二次默认/解析）。Spec.Magnitude 已是折算后的带符号数量。
type EffectiveConfig struct {
	Sources []string

	Spec   domain.CountSpec
	Header domain.HeaderPolicy
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code    string
	Literal string
	Err     error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeBadLineCount:
		// 逐字回显原始字面量是对外契约。
		return fmt.Sprintf("illegal line count -- %s", e.Literal)
	case ErrCodeBadByteCount:
		return fmt.Sprintf("illegal byte count -- %s", e.Literal)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Resolve 把 CLI 参数解析/校验为最终配置。
//
// 规则（固定）：
// - -n 与 -c 互斥（同时显式指定是用法错误，不做 last-wins）
// - -q 与 -v 互斥；均未指定时为 MultipleOnly
// - 无文件参数时默认读标准输入（"-"）
// - 数量字面量解析失败立即失败（任何源都不处理）
func Resolve(cli CLIArgs) (EffectiveConfig, error) {
	if cli.LineSet && cli.ByteSet {
		return EffectiveConfig{}, &Error{Code: ErrCodeUsage, Err: fmt.Errorf("-n 与 -c 不能同时指定")}
	}
	if cli.QuietSet && cli.VerboseSet {
		return EffectiveConfig{}, &Error{Code: ErrCodeUsage, Err: fmt.Errorf("-q 与 -v 不能同时指定")}
	}

	spec := domain.CountSpec{Unit: domain.UnitLines}
	if cli.ByteSet {
		n, err := countspec.Parse(cli.ByteSpec)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeBadByteCount, Literal: cli.ByteSpec, Err: err}
		}
		spec = domain.CountSpec{Unit: domain.UnitBytes, Magnitude: n}
	} else {
		raw := cli.LineSpec
		if !cli.LineSet {
			raw = DefaultLineSpec
		}
		n, err := countspec.Parse(raw)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeBadLineCount, Literal: raw, Err: err}
		}
		spec = domain.CountSpec{Unit: domain.UnitLines, Magnitude: n}
	}

	header := domain.HeaderMultipleOnly
	if cli.QuietSet {
		header = domain.HeaderNever
	} else if cli.VerboseSet {
		header = domain.HeaderAlways
	}

	sources := append([]string(nil), cli.Files...)
	if len(sources) == 0 {
		sources = []string{source.StdinName}
	}

	return EffectiveConfig{
		Sources: sources,
		Spec:    spec,
		Header:  header,
	}, nil
}
