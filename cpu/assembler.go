// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the first line of macro text.
	Args   []string // Argument names, bound as equates on expansion.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var (
	reCharLiteral = regexp.MustCompile(`'\\?[^']'`)
	reExpression  = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Escapes allowed inside character literals.
var charEscape = map[string]string{
	`\\`: `\`,
	`\n`: "\n",
	`\r`: "\r",
	`\e`: "\033",
}

// Assembler is a single pass macro assembler for the CHIP-8 subset.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	addr      int               // Address of the next opcode.
	predefine map[string]string // Equates present before the first line.
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
	Macro     map[string]*Macro // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = make(map[string]string)
	}
	asm.predefine[equ] = value
}

// valueOf returns the value of a numeric word, with an optional '~' to
// invert it. Negative values are two's complement.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	text, invert := strings.CutPrefix(word, "~")
	switch {
	case len(text) == 0:
		err = ErrParseNumber(word)
		return
	case text[0] == '\'':
		// Literals are expanded by parseLine, so this one was malformed.
		err = ErrParseCharacter(strings.Trim(text, "'"))
		return
	}

	v64, perr := strconv.ParseInt(text, 0, 33)
	if perr != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)
	if invert {
		value = ^value
	}

	return
}

// valueIn returns the value of a word, which must be no larger than limit.
func (asm *Assembler) valueIn(word string, limit uint32) (value uint32, err error) {
	value, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if value > limit {
		err = ErrValueRange
		return
	}

	return
}

// register returns the register index of a word.
func (asm *Assembler) register(word string) (index uint8, err error) {
	index, ok := RegisterIndex(word)
	if !ok {
		err = ErrRegisterInvalid
		return
	}

	return
}

// globals returns the numeric equates, for use in expressions.
func (asm *Assembler) globals() (globals starlark.StringDict) {
	globals = make(starlark.StringDict, len(asm.Equate))
	for name, text := range asm.Equate {
		// Register names and other text equates are not visible.
		value, err := asm.valueOf(text)
		if err != nil {
			continue
		}
		globals[name] = starlark.MakeUint64(uint64(value))
	}

	return
}

// evaluate computes a $(...) expression at assembly time.
func (asm *Assembler) evaluate(expr string) (value uint32, err error) {
	thread := &starlark.Thread{Name: "asm"}
	result, err := starlark.EvalOptions(&syntax.FileOptions{}, thread, "expr", expr, asm.globals())
	if err != nil {
		return
	}

	number, ok := result.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	i64, ok := number.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	value = uint32(i64)

	return
}

// expandChars replaces 'c' literals with their decimal value.
func expandChars(line string) string {
	return reCharLiteral.ReplaceAllStringFunc(line, func(quoted string) string {
		text := quoted[1 : len(quoted)-1]
		if len(text) > 1 {
			var ok bool
			text, ok = charEscape[text]
			if !ok {
				return quoted
			}
		}
		return strconv.Itoa(int(text[0]))
	})
}

// expandExpressions replaces each $(...) with its hexadecimal value.
func (asm *Assembler) expandExpressions(line string) (expanded string, err error) {
	expanded = reExpression.ReplaceAllStringFunc(line, func(match string) string {
		if err != nil {
			return match
		}
		value, xerr := asm.evaluate(match[2 : len(match)-1])
		if xerr != nil {
			err = xerr
			return match
		}
		return fmt.Sprintf("%#x", value)
	})

	return
}

// defineEquate handles '.equ NAME VALUE'.
func (asm *Assembler) defineEquate(args []string) (err error) {
	if len(args) != 2 {
		err = ErrEquateSyntax
		return
	}

	if _, ok := asm.Equate[args[0]]; ok {
		err = ErrEquateDuplicate
		return
	}

	asm.Equate[args[0]] = args[1]

	return
}

// defineLabels binds any leading 'name:' words to the current address,
// and returns the words that follow them.
func (asm *Assembler) defineLabels(words []string) (rest []string, err error) {
	rest = words
	for len(rest) > 0 {
		label, ok := strings.CutSuffix(rest[0], ":")
		if !ok {
			break
		}

		if _, ok := asm.Label[label]; ok {
			err = ErrLabelDuplicate
			return
		}

		// A call can only reach the 12-bit address space.
		if asm.addr > ADDRESS_MASK {
			err = ErrAddress{Addr: asm.addr, Err: ErrValueRange}
			return
		}

		asm.Label[label] = asm.addr
		rest = rest[1:]
	}

	return
}

// defineMacro handles '.macro NAME arg...'.
func (asm *Assembler) defineMacro(words []string, lineno int) (macro *Macro, err error) {
	if len(words) == 0 {
		err = ErrMacroSyntax
		return
	}

	name := words[0]
	if _, ok := asm.Macro[name]; ok {
		err = ErrMacroDuplicate
		return
	}

	macro = &Macro{LineNo: lineno + 1, Args: words[1:]}
	asm.Macro[name] = macro

	return
}

// expandMacro assembles the lines of a macro, with its arguments bound.
// '@' in macro text becomes a prefix unique to each line.
func (asm *Assembler) expandMacro(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	saved := maps.Clone(asm.Equate)
	defer func() { asm.Equate = saved }()

	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}

	for n, text := range macro.Lines {
		lineno := macro.LineNo + n
		text = strings.ReplaceAll(text, "@", fmt.Sprintf("%v_%v_", name, lineno))

		var words []string
		words, err = asm.parseLine(text, lineno)
		if err == nil {
			err = asm.parseWords(words, lineno)
		}
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			err = &ErrSyntax{LineNo: lineno, Line: text, Err: err}
			return
		}
	}

	return
}

// parseLine expands a line of text into words ready for parseWords.
// Equates, labels and macro invocations are consumed here.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	line, err = asm.expandExpressions(expandChars(line))
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	if words[0] == ".equ" {
		err = asm.defineEquate(words[1:])
		words = nil
		return
	}

	for n, word := range words {
		if equate, ok := asm.Equate[word]; ok {
			words[n] = equate
		}
	}

	words, err = asm.defineLabels(words)
	if err != nil || len(words) == 0 {
		return
	}

	if macro, ok := asm.Macro[words[0]]; ok {
		err = asm.expandMacro(words[0], macro, words[1:])
		words = nil
		return
	}

	return
}

// reset clears the state left from any previous Parse.
func (asm *Assembler) reset() {
	asm.Opcode = asm.Opcode[:0]
	asm.addr = 0
	asm.Label = make(map[string]int)
	asm.Macro = make(map[string]*Macro)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
}

// link fills in the targets of calls made by label.
// On a missing label, the failing opcode is returned.
func (asm *Assembler) link() (failed *Opcode, err error) {
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		if len(op.LinkLabel) == 0 {
			continue
		}

		addr, ok := asm.Label[op.LinkLabel]
		if !ok {
			failed = op
			err = ErrLabelMissing(op.LinkLabel)
			return
		}

		code := MakeCodeCall(uint16(addr)).Bytes()
		op.Bytes = code[:]
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.reset()

	var macro *Macro
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		if asm.Verbose {
			log.Printf("%v: %v", lineno, text)
		}

		text, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(strings.ReplaceAll(text, "\t", " "))
		words := strings.Fields(line)

		directive := ""
		if len(words) > 0 {
			directive = words[0]
		}

		switch {
		case directive == ".macro":
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			macro, err = asm.defineMacro(words[1:], lineno)
		case directive == ".endm":
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
		case macro != nil:
			macro.Lines = append(macro.Lines, line)
		default:
			words, err = asm.parseLine(line, lineno)
			if err == nil {
				err = asm.parseWords(words, lineno)
			}
		}
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	failed, err := asm.link()
	if err != nil {
		lineno = failed.LineNo
		line = strings.Join(failed.Words, " ")
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}
// target returns the address bytes of a call target.
// Words that are not numbers are labels, linked after parsing.
func (asm *Assembler) target(word string) (code Code, label string, err error) {
	addr, err := asm.valueIn(word, ADDRESS_MASK)
	var not_number ErrParseNumber
	switch {
	case errors.As(err, &not_number):
		err = nil
		label = word
		code = MakeCodeCall(0)
	case errors.Is(err, ErrValueRange):
		err = ErrTargetInvalid
	case err == nil:
		code = MakeCodeCall(uint16(addr))
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []uint8
	var data bool
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		if asm.addr+len(bytes) > MEMORY_SIZE {
			err = ErrAddress{Addr: asm.addr, Err: ErrValueRange}
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.addr, Words: initial_words, Bytes: bytes, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
		asm.addr += len(bytes)
	}()

	// Alternate syntax substitutions
	switch {
	case len(words) == 1 && words[0] == "return":
		words = []string{"ret"}
	case len(words) == 1 && words[0] == "exit":
		words = []string{"halt"}
	default:
		// unchanged
	}

	code := func(c Code) {
		b := c.Bytes()
		bytes = append(bytes, b[:]...)
	}

	switch words[0] {
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		var addr uint32
		addr, err = asm.valueIn(words[1], MEMORY_SIZE-1)
		if err != nil {
			return
		}
		asm.addr = int(addr)
	case ".byte":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		data = true
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueIn(word, 0xff)
			if err != nil {
				return
			}
			bytes = append(bytes, uint8(value))
		}
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueIn(word, 0xffff)
			if err != nil {
				return
			}
			code(Code(value))
		}
	case "halt":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		code(MakeCodeHalt())
	case "ret":
		if len(words) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		code(MakeCodeReturn())
	case "add":
		if len(words) < 3 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(words) > 3 {
			err = ErrOpcodeExtraArgs
			return
		}
		var x, y uint8
		x, err = asm.register(words[1])
		if err != nil {
			return
		}
		y, err = asm.register(words[2])
		if err != nil {
			return
		}
		code(MakeCodeAddXY(x, y))
	case "call":
		if len(words) < 2 {
			err = ErrOpcodeMissing
			return
		}
		if len(words) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var call Code
		call, label, err = asm.target(words[1])
		if err != nil {
			return
		}
		code(call)
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
