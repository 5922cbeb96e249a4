package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	pcc "github.com/ChandanHegde07/PCC"
)

const (
	appName     = "pcc"
	historyFile = ".pcc_history"
	promptMain  = "pcc> "
	promptCont  = "...> "
)

var banner = fmt.Sprintf("PCC %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", pcc.Version)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "compile":
		os.Exit(cmdCompile(os.Args[2:]))
	case "tokens":
		os.Exit(cmdTokens(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(pcc.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`PCC %s (built %s)

Usage:
  %s compile <file.pcc> [-f json|text|markdown] [-o out] [--no-optimize] [--escape] [--html]
  %s tokens <file.pcc>                Dump the token stream.
  %s repl                             Start the REPL.
  %s version                          Print the compiled version.

`, pcc.Version, pcc.BuildDate, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// compile
// -----------------------------------------------------------------------------

func cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	formatName := fs.String("f", "json", "output format: json, text or markdown")
	outPath := fs.String("o", "", "write output to file instead of stdout")
	noOptimize := fs.Bool("no-optimize", false, "disable optimization passes")
	escape := fs.Bool("escape", false, "escape string payloads in JSON output")
	html := fs.Bool("html", false, "render markdown output to HTML")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s compile <file.pcc> [flags]\n", appName)
		return 2
	}

	format, ok := parseFormat(*formatName)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: unknown format %q\n", appName, *formatName)
		return 2
	}

	file := fs.Arg(0)
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	passes := pcc.PassAll
	if *noOptimize {
		passes = 0
	}
	res, err := pcc.Compile(string(src), pcc.CompileOptions{
		Filename:      file,
		Format:        format,
		Passes:        passes,
		EscapeStrings: *escape,
	})
	if err != nil {
		reportErrors(res, err, string(src))
		return 1
	}

	output := res.Output
	if *html && format == pcc.FormatMarkdown {
		output, err = pcc.RenderHTML(res.AST, res.Table)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write %s: %v\n", appName, *outPath, err)
			return 1
		}
		return 0
	}
	fmt.Println(output)
	return 0
}

func parseFormat(name string) (pcc.OutputFormat, bool) {
	switch strings.ToLower(name) {
	case "json":
		return pcc.FormatJSON, true
	case "text":
		return pcc.FormatText, true
	case "markdown", "md":
		return pcc.FormatMarkdown, true
	default:
		return 0, false
	}
}

// reportErrors prints every accumulated pipeline error as a caret snippet.
func reportErrors(res *pcc.CompileResult, first error, src string) {
	errs := res.Errs()
	if len(errs) == 0 {
		errs = []error{first}
	}
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, red(pcc.WrapErrorWithSource(e, src).Error()))
	}
}

// -----------------------------------------------------------------------------
// tokens
// -----------------------------------------------------------------------------

func cmdTokens(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s tokens <file.pcc>\n", appName)
		return 2
	}
	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}
	tokens, err := pcc.Tokenize(string(src), file)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(pcc.WrapErrorWithSource(err, string(src)).Error()))
		return 1
	}
	for _, t := range tokens {
		if t.Lexeme != "" && t.Lexeme != t.Type.String() {
			fmt.Printf("%s\t%s\t%q\n", t.Pos, t.Type, t.Lexeme)
		} else {
			fmt.Printf("%s\t%s\n", t.Pos, t.Type)
		}
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	format := pcc.FormatJSON
	for {
		code, ok := readBalanced(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			fields := strings.Fields(trimmed)
			switch strings.ToLower(fields[0]) {
			case ":quit":
				return 0
			case ":format":
				if len(fields) == 2 {
					if f, ok := parseFormat(fields[1]); ok {
						format = f
						continue
					}
				}
				fmt.Println("usage: :format json|text|markdown")
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}

		res, err := pcc.Compile(code, pcc.CompileOptions{
			Filename: "<repl>",
			Format:   format,
			Passes:   pcc.PassAll,
		})
		if err != nil {
			reportErrors(res, err, code)
			continue
		}
		fmt.Println(blue(res.Output))
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readBalanced keeps prompting for continuation lines until braces and
// parentheses balance, which is enough for the DSL's block syntax.
func readBalanced(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if balanced(b.String()) {
			return b.String(), true
		}
	}
}

// balanced counts braces and parens outside string literals.
func balanced(src string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		}
	}
	return depth <= 0
}
