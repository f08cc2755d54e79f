package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/John-Robertt/hed/internal/app/run"
	"github.com/John-Robertt/hed/internal/config"
	"github.com/John-Robertt/hed/internal/domain"
)

func main() {
	if code := runCmd(os.Args[1:]); code != 0 {
		os.Exit(code)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printUsage()
			return 0
		}
	}

	cli, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hed: %v\n\n", err)
		printUsage()
		return 2
	}

	eff, err := config.Resolve(cli)
	if err != nil {
		if config.Code(err) == config.ErrCodeUsage {
			fmt.Fprintf(os.Stderr, "hed: %v\n\n", err)
			printUsage()
			return 2
		}
		// illegal line/byte count：fail fast，任何源都不处理。
		fmt.Fprintf(os.Stderr, "hed: %v\n", err)
		return 1
	}

	rr := run.Execute(eff, os.Stdin, os.Stdout)

	// stdout 只承载内容与头部；诊断一律走 stderr。
	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		fmt.Fprintf(os.Stderr, "hed: %s\n", it.ErrorMsg)
	}
	if rr.OK() {
		return 0
	}
	return 1
}

// parseArgs 解析 CLI 参数（不依赖 flag 包，保留"是否显式指定"信息）。
// 支持 -n V / -nV / --lines V / --lines=V（-c/--bytes 同形），
// "--" 之后全部视为文件；单独的 "-" 是标准输入而不是开关。
func parseArgs(args []string) (config.CLIArgs, error) {
	cli := config.CLIArgs{}
	noMoreFlags := false

	for i := 0; i < len(args); i++ {
		a := args[i]

		if noMoreFlags || a == "-" || !strings.HasPrefix(a, "-") {
			cli.Files = append(cli.Files, a)
			continue
		}

		switch {
		case a == "--":
			noMoreFlags = true

		case a == "-n" || a == "--lines":
			if i+1 >= len(args) {
				return config.CLIArgs{}, fmt.Errorf("%s 需要一个值", a)
			}
			i++
			cli.LineSpec = args[i]
			cli.LineSet = true
		case strings.HasPrefix(a, "--lines="):
			cli.LineSpec = strings.TrimPrefix(a, "--lines=")
			cli.LineSet = true
		case strings.HasPrefix(a, "-n"):
			cli.LineSpec = strings.TrimPrefix(a, "-n")
			cli.LineSet = true

		case a == "-c" || a == "--bytes":
			if i+1 >= len(args) {
				return config.CLIArgs{}, fmt.Errorf("%s 需要一个值", a)
			}
			i++
			cli.ByteSpec = args[i]
			cli.ByteSet = true
		case strings.HasPrefix(a, "--bytes="):
			cli.ByteSpec = strings.TrimPrefix(a, "--bytes=")
			cli.ByteSet = true
		case strings.HasPrefix(a, "-c"):
			cli.ByteSpec = strings.TrimPrefix(a, "-c")
			cli.ByteSet = true

		case a == "-q" || a == "--quiet" || a == "--silent":
			cli.Quiet = true
			cli.QuietSet = true
		case a == "-v" || a == "--verbose":
			cli.Verbose = true
			cli.VerboseSet = true

		default:
			return config.CLIArgs{}, fmt.Errorf("未知参数 %q", a)
		}
	}

	return cli, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  hed [FILE...] [-n LINES] [-c BYTES] [-q] [-v]

参数：
  -n, --lines    输出前 LINES 行（默认 10）；负数表示除末尾 |N| 行外全部
  -c, --bytes    输出前 BYTES 字节；负数表示除末尾 |N| 字节外全部；与 -n 互斥
  -q, --quiet    从不输出 ==> FILE <== 头部
  -v, --verbose  总是输出头部（默认仅多文件时输出）
  -h, --help     显示帮助

数量后缀：b=512，kB=1000，K=1024，MB/GB/...=十进制幂，M/G/...=二进制幂。
FILE 为 "-" 或缺省时读取标准输入。
`)
}
