package fsx

import (
	"errors"
	"fmt"
	"os"
)

// NotRegularError 表示路径存在但不是常规文件（目录、设备等）。
// 上层可把它映射为 error_code=open_failed。
type NotRegularError struct {
	Path string
	Got  string
}

func (e *NotRegularError) Error() string {
	return fmt.Sprintf("不是常规文件：%q（实际 %s）", e.Path, e.Got)
}

// IsNotRegular 判断 err 是否为非常规文件错误。
func IsNotRegular(err error) bool {
	var e *NotRegularError
	return errors.As(err, &e)
}

// ProbeRegular 对 path 做 stat（跟随符号链接），确认是常规文件并返回字节尺寸。
//
// 约束：只做 stat，不读文件内容；尺寸来自元数据，供"测量阶段"使用。
func ProbeRegular(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if fi.IsDir() {
		return 0, &NotRegularError{Path: path, Got: "dir"}
	}
	if !fi.Mode().IsRegular() {
		return 0, &NotRegularError{Path: path, Got: fi.Mode().Type().String()}
	}
	return fi.Size(), nil
}
