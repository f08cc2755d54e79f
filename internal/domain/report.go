package domain

import (
	"encoding/json"
	"time"
)

const (
	// StatusEmitted 表示该源的前缀已完整写入 sink。
	StatusEmitted = "emitted"
	// StatusFailed 表示该源打开/测量失败，或 sink 写入中断。
	StatusFailed = "failed"
)

const (
	ErrCodeParseFailed = "parse_failed"
	ErrCodeOpenFailed  = "open_failed"
	ErrCodeIOFailed    = "io_failed"
	ErrCodeSinkFailed  = "sink_failed"
)

// RunReport 是一次运行的对外稳定输出（退出码与 stderr 诊断由它驱动）。
//
// 注意：Items 保持调用方给定的源顺序，不排序——输出顺序本身是契约。
type RunReport struct {
	Sources []string `json:"sources"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary  `json:"summary"`
	Items   []SourceResult `json:"items"`
}

type ReportSummary struct {
	Emitted int `json:"emitted"`
	Failed  int `json:"failed"`
}

// SourceResult 是单个源的处理结果（RunOutcome）。
// 单个源失败不影响其他源；SinkFailed 例外（sink 坏了整个运行中止）。
type SourceResult struct {
	Name string `json:"name"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	BytesWritten int64 `json:"bytes_written"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusEmitted:
			s.Emitted++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// OK 表示整个运行是否可以返回零退出码。
func (r *RunReport) OK() bool {
	return r.Summary.Failed == 0
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
