package run

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/John-Robertt/hed/internal/config"
	"github.com/John-Robertt/hed/internal/domain"
)

func TestExecute_SingleFile_NoHeader(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1\n2\n3\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{a},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 2},
		Header:  domain.HeaderMultipleOnly,
	}, nil, &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	if out.String() != "1\n2\n" {
		t.Fatalf("期望 %q，实际 %q", "1\n2\n", out.String())
	}
	if rr.Items[0].BytesWritten != 4 {
		t.Fatalf("期望 BytesWritten=4，实际 %d", rr.Items[0].BytesWritten)
	}
}

func TestExecute_MultipleFiles_Headers(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "aa\n")
	b := writeFile(t, dir, "b.txt", "bb\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{a, b},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 10},
		Header:  domain.HeaderMultipleOnly,
	}, nil, &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	// 第一个头部无前导空行；之后每个头部前恰好一个空行。
	want := "==> " + a + " <==\naa\n\n==> " + b + " <==\nbb\n"
	if out.String() != want {
		t.Fatalf("期望 %q，实际 %q", want, out.String())
	}
}

func TestExecute_QuietSuppressesHeaders(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "aa\n")
	b := writeFile(t, dir, "b.txt", "bb\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{a, b},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 10},
		Header:  domain.HeaderNever,
	}, nil, &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	if out.String() != "aa\nbb\n" {
		t.Fatalf("期望 %q，实际 %q", "aa\nbb\n", out.String())
	}
}

func TestExecute_VerboseSingleFileHeader(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "aa\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{a},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 10},
		Header:  domain.HeaderAlways,
	}, nil, &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	want := "==> " + a + " <==\naa\n"
	if out.String() != want {
		t.Fatalf("期望 %q，实际 %q", want, out.String())
	}
}

func TestExecute_PartialFailureIsolation(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.txt")
	ok := writeFile(t, dir, "ok.txt", "ok\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{missing, ok},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 10},
		Header:  domain.HeaderMultipleOnly,
	}, nil, &out)

	// 失败的源不产出任何内容，但不影响后续源；
	// 头部的 MultipleOnly 判定依然用请求的源数量（2 个 => 有头部）。
	if len(rr.Items) != 2 {
		t.Fatalf("期望 2 个 item，实际 %d", len(rr.Items))
	}
	if rr.Items[0].Status != domain.StatusFailed || rr.Items[0].ErrorCode != domain.ErrCodeOpenFailed {
		t.Fatalf("期望 missing 失败 open_failed，实际 %+v", rr.Items[0])
	}
	if rr.Items[1].Status != domain.StatusEmitted {
		t.Fatalf("期望 ok 成功，实际 %+v", rr.Items[1])
	}
	if rr.OK() {
		t.Fatalf("存在失败时整体必须报失败")
	}
	if !strings.Contains(out.String(), "==> "+ok+" <==\nok\n") {
		t.Fatalf("输出应包含 ok 的头部与内容，实际 %q", out.String())
	}
	if strings.Contains(out.String(), "missing.txt <==") {
		t.Fatalf("失败的源不应输出头部：%q", out.String())
	}
	// 诊断形如 {name}: {os 级原因}。
	if !strings.HasPrefix(rr.Items[0].ErrorMsg, missing+": ") {
		t.Fatalf("诊断消息格式不符：%q", rr.Items[0].ErrorMsg)
	}
}

func TestExecute_NegativeBytesUsesMeasuredSize(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello\nworld\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{a},
		Spec:    domain.CountSpec{Unit: domain.UnitBytes, Magnitude: -2},
		Header:  domain.HeaderMultipleOnly,
	}, nil, &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	if out.String() != "hello\nworl" {
		t.Fatalf("期望 %q，实际 %q", "hello\nworl", out.String())
	}
}

func TestExecute_NegativeLinesOnStdinDegenerates(t *testing.T) {
	// 不可测尺寸源：TotalLines 哨兵为 1，-1 退化为零行输出，而不是错误。
	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{"-"},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: -1},
		Header:  domain.HeaderMultipleOnly,
	}, strings.NewReader("a\nb\nc\n"), &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	if out.Len() != 0 {
		t.Fatalf("期望空输出，实际 %q", out.String())
	}
}

func TestExecute_StdinPositiveLines(t *testing.T) {
	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{"-"},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 2},
		Header:  domain.HeaderMultipleOnly,
	}, strings.NewReader("a\nb\nc\n"), &out)

	if !rr.OK() {
		t.Fatalf("不期望失败：%+v", rr.Items)
	}
	if out.String() != "a\nb\n" {
		t.Fatalf("期望 %q，实际 %q", "a\nb\n", out.String())
	}
}

type brokenSink struct{}

func (brokenSink) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestExecute_SinkFailureAbortsRun(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "aa\n")
	b := writeFile(t, dir, "b.txt", "bb\n")

	rr := Execute(config.EffectiveConfig{
		Sources: []string{a, b},
		Spec:    domain.CountSpec{Unit: domain.UnitLines, Magnitude: 10},
		Header:  domain.HeaderNever,
	}, nil, brokenSink{})

	// sink 坏了：当前源 sink_failed，剩余源不再处理。
	if len(rr.Items) != 1 {
		t.Fatalf("期望只处理 1 个源，实际 %d 个 item", len(rr.Items))
	}
	if rr.Items[0].ErrorCode != domain.ErrCodeSinkFailed {
		t.Fatalf("期望 sink_failed，实际 %+v", rr.Items[0])
	}
	if rr.OK() {
		t.Fatalf("sink 失败必须整体报失败")
	}
}

func TestExecute_DirectoryAsSourceFailsWithoutAbort(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	ok := writeFile(t, dir, "ok.txt", "ok\n")

	var out bytes.Buffer
	rr := Execute(config.EffectiveConfig{
		Sources: []string{sub, ok},
		Spec:    domain.CountSpec{Unit: domain.UnitBytes, Magnitude: -1},
		Header:  domain.HeaderNever,
	}, nil, &out)

	// 目录在测量阶段即失败（只有常规文件可测量），后续源照常。
	if rr.Items[0].Status != domain.StatusFailed {
		t.Fatalf("期望目录源失败，实际 %+v", rr.Items[0])
	}
	if rr.Items[1].Status != domain.StatusEmitted {
		t.Fatalf("期望 ok 成功，实际 %+v", rr.Items[1])
	}
	if out.String() != "ok" {
		t.Fatalf("期望 %q，实际 %q", "ok", out.String())
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
	return path
}
