// compile.go: the front door tying the pipeline stages together.
package pcc

// Tokenize scans src into an EOF-terminated token sequence. filename is used
// for positions only.
func Tokenize(src, filename string) ([]Token, error) {
	return NewLexer(src, filename).Tokenize()
}

// CompileOptions configures a full pipeline run.
type CompileOptions struct {
	Filename      string
	Format        OutputFormat
	Passes        Pass // optimization passes; zero disables the optimizer
	EscapeStrings bool // escape string payloads in JSON output
}

// CompileResult carries every stage's output so callers can inspect partial
// results even when compilation failed.
type CompileResult struct {
	Tokens         []Token
	AST            Node
	Table          *SymbolTable
	ParseErrors    []*ParseError
	SemanticErrors []*SemanticError
	Optimizations  int
	Output         string
}

// Errs returns all parse and semantic errors as a single slice in stage
// order.
func (r *CompileResult) Errs() []error {
	var out []error
	for _, e := range r.ParseErrors {
		out = append(out, e)
	}
	for _, e := range r.SemanticErrors {
		out = append(out, e)
	}
	return out
}

// Compile runs the full pipeline on src. The returned error is the first
// blocking failure (lex error, any parse or semantic error, generation
// failure); the result is always non-nil and holds whatever stages completed.
func Compile(src string, opts CompileOptions) (*CompileResult, error) {
	res := &CompileResult{}

	tokens, err := Tokenize(src, opts.Filename)
	if err != nil {
		return res, err
	}
	res.Tokens = tokens

	prog, parseErrs := Parse(tokens)
	res.AST = prog
	res.ParseErrors = parseErrs
	if len(parseErrs) > 0 {
		return res, parseErrs[0]
	}

	semErrs, table := Analyze(prog)
	res.Table = table
	res.SemanticErrors = semErrs
	if len(semErrs) > 0 {
		return res, semErrs[0]
	}

	if opts.Passes != 0 {
		opt := NewOptimizer(opts.Passes)
		res.AST = opt.Optimize(res.AST)
		res.Optimizations = opt.Applied()
	}

	gen := NewGenerator(opts.Format, table)
	gen.EscapeStrings = opts.EscapeStrings
	out, err := gen.Generate(res.AST)
	if err != nil {
		return res, err
	}
	res.Output = out
	return res, nil
}
