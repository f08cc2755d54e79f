package run

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/John-Robertt/hed/internal/config"
	"github.com/John-Robertt/hed/internal/domain"
	"github.com/John-Robertt/hed/internal/extract"
	"github.com/John-Robertt/hed/internal/source"
)

// Execute 按给定顺序逐个处理源，把前缀写入 sink，并返回对外稳定的 RunReport。
//
// 隔离规则：
// - 单个源打开/测量失败只降级为 item 级失败，后续源照常处理；
// - 头部的 MultipleOnly 判定用"请求的源列表长度"，失败的源不改变该计数；
// - sink 写入失败视为输出端已坏：当前源标记 sink_failed，剩余源不再处理。
//
// stdin 可注入（测试用）；传 nil 则使用进程标准输入。
func Execute(eff config.EffectiveConfig, stdin io.Reader, sink io.Writer) domain.RunReport {
	started := time.Now().UTC()

	rr := domain.RunReport{
		Sources:   append([]string(nil), eff.Sources...),
		StartedAt: started,
		Items:     make([]domain.SourceResult, 0, len(eff.Sources)),
	}

	withHeader := eff.Header.Applies(len(eff.Sources))
	needFacts := eff.Spec.Magnitude < 0

	for i, name := range eff.Sources {
		src := source.New(name, stdin)

		// 测量先于打开：负数数量需要总量；失败与打开失败同等隔离。
		var facts source.Facts
		if needFacts {
			f, err := src.Measure()
			if err != nil {
				rr.Items = append(rr.Items, failedItem(name, domain.ErrCodeOpenFailed, sourceErrMsg(name, err)))
				continue
			}
			facts = f
		}

		rc, err := src.Open()
		if err != nil {
			rr.Items = append(rr.Items, failedItem(name, domain.ErrCodeOpenFailed, sourceErrMsg(name, err)))
			continue
		}

		// 头部的空行前缀按源的位置判定（第一个源之外都要），
		// 与前面源成功与否无关。
		if withHeader {
			if err := extract.WriteHeader(sink, name, i == 0); err != nil {
				_ = rc.Close()
				rr.Items = append(rr.Items, failedItem(name, domain.ErrCodeSinkFailed, err.Error()))
				break
			}
		}

		n, err := extract.Extract(rc, eff.Spec, facts, sink)
		_ = rc.Close()
		if err != nil {
			if extract.IsSink(err) {
				rr.Items = append(rr.Items, failedItem(name, domain.ErrCodeSinkFailed, err.Error()))
				break
			}
			rr.Items = append(rr.Items, failedItem(name, domain.ErrCodeIOFailed, sourceErrMsg(name, err)))
			continue
		}

		rr.Items = append(rr.Items, domain.SourceResult{
			Name:         name,
			Status:       domain.StatusEmitted,
			BytesWritten: n,
		})
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func failedItem(name, code, msg string) domain.SourceResult {
	return domain.SourceResult{
		Name:      name,
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

// sourceErrMsg 生成 `{name}: {os 级原因}` 形式的诊断。
// *fs.PathError 解到底层错误，避免 "open x: open x: ..." 式重复。
func sourceErrMsg(name string, err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s: %v", name, pe.Err)
	}
	return fmt.Sprintf("%s: %v", name, err)
}
