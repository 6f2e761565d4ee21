package settings

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// LuaParser parses Lua settings with platform detection.
type LuaParser struct {
	detector platform.Detector
}

// NewLuaParser creates a parser; a nil detector leaves `platform` undefined.
func NewLuaParser(detector platform.Detector) *LuaParser {
	return &LuaParser{detector: detector}
}

// ParseString parses Lua settings from a string.
func (p *LuaParser) ParseString(ctx context.Context, luaCode string) (*File, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		key, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, key); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractFile(L)
}

// extractFile reads the global "lsp" table. A missing table is an empty File;
// non-string keys are ignored.
func extractFile(L *lua.LState) (*File, error) {
	f := &File{}

	lspVal := L.GetGlobal(luaGlobalLSP)
	switch lspVal.Type() {
	case lua.LTNil:
		return f, nil
	case lua.LTTable:
	default:
		return nil, &ParseError{
			Message: "invalid 'lsp' value",
			Detail:  fmt.Sprintf("expected table, got %s", lspVal.Type()),
		}
	}

	lspVal.(*lua.LTable).ForEach(func(key, value lua.LValue) {
		if key.Type() != lua.LTString {
			return
		}
		id := key.String()
		if value.Type() != lua.LTTable {
			f.add(id, LSP{}, &ParseError{
				Message: "invalid server entry",
				Detail:  fmt.Sprintf("lsp[%s] must be a table, got %s", id, value.Type()),
			})
			return
		}
		lsp, err := extractLSP(id, value.(*lua.LTable))
		f.add(id, lsp, err)
	})

	return f, nil
}

// extractLSP extracts one server's settings.
func extractLSP(id string, table *lua.LTable) (LSP, error) {
	lsp := LSP{}

	binVal := table.RawGetString(luaFieldBinary)
	switch binVal.Type() {
	case lua.LTNil:
		return lsp, nil
	case lua.LTTable:
	default:
		return lsp, &ParseError{
			Message: "invalid 'binary' value",
			Detail:  fmt.Sprintf("lsp.%s.binary: expected table, got %s", id, binVal.Type()),
		}
	}

	binTable := binVal.(*lua.LTable)
	bin := &Binary{}

	if pathVal := binTable.RawGetString(luaFieldPath); pathVal.Type() == lua.LTString {
		bin.Path = pathVal.String()
	}

	if argsVal := binTable.RawGetString(luaFieldArguments); argsVal.Type() == lua.LTTable {
		args, err := extractArguments(id, argsVal.(*lua.LTable))
		if err != nil {
			return lsp, err
		}
		bin.Arguments = args
	}

	lsp.Binary = bin
	return lsp, nil
}

// extractArguments reads an array of strings, skipping nil holes left by
// platform conditionals.
func extractArguments(id string, table *lua.LTable) ([]string, error) {
	var args []string
	for i := 1; i <= table.MaxN(); i++ {
		v := table.RawGetInt(i)
		switch v.Type() {
		case lua.LTNil:
			continue
		case lua.LTString:
			args = append(args, v.String())
		default:
			return nil, &ParseError{
				Message: "invalid argument",
				Detail:  fmt.Sprintf("lsp.%s.binary.arguments[%d]: expected string, got %s", id, i, v.Type()),
			}
		}
	}
	return args, nil
}
