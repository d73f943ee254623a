package snapshot

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"scriptc/internal/hir"
	"scriptc/internal/ice"
	"scriptc/internal/js"
	"scriptc/internal/types"
)

// sampleHIR builds
//
//	class Panel
//	  static field count: int = Panel.next(1)
//	  field root: Element
//	  static method next(n: int): int
//	    let k: int = n
//	    return k
//	  method show(e: Element): boolean
//	    while (e instanceof Element) { return true }
//	    return false
//
// with Element extends JavaScriptObject, the wrapper root.
func sampleHIR() *hir.Program {
	in := types.NewInterner()
	b := in.Builtins()
	root := in.RegisterClass("JavaScriptObject", types.NoTypeID)
	in.SetWrapperRoot(root)
	element := in.RegisterClass("Element", root)
	panel := in.RegisterClass("Panel", types.NoTypeID)
	iface := in.RegisterInterface("Shown")
	in.AddInterface(panel, iface)
	grid := in.ArrayOf(element, 2)

	n := &hir.Param{Name: "n", Type: b.Int}
	k := &hir.Local{Name: "k", Type: b.Int}
	next := &hir.Method{
		Name:   "next",
		Params: []*hir.Param{n},
		Result: b.Int,
		Flags:  hir.MethodStatic,
		Body: hir.NewBlock(
			hir.NewLet(k, hir.NewParamRef(n)),
			hir.NewReturn(hir.NewLocalRef(k)),
		),
	}
	e := &hir.Param{Name: "e", Type: element}
	show := &hir.Method{
		Name:   "show",
		Params: []*hir.Param{e},
		Result: b.Bool,
		Body: hir.NewBlock(
			&hir.Stmt{Kind: hir.StmtWhile, Data: hir.WhileData{
				Cond: hir.NewInstanceOf(element, hir.NewParamRef(e), b.Bool),
				Body: hir.NewBlock(hir.NewReturn(&hir.Expr{Kind: hir.ExprLiteral, Type: b.Bool, Data: hir.LiteralData{Kind: hir.LiteralBool, BoolValue: true}})),
			}},
			hir.NewExprStmt(hir.NewArrayAlloc(in, in.ArrayOf(element, 1), []*hir.Expr{hir.NewInt(b.Int, 2)}, nil)),
			hir.NewExprStmt(&hir.Expr{Kind: hir.ExprBinary, Type: b.Bool, Data: hir.BinaryData{
				Op:    hir.BinaryLe,
				Left:  hir.NewInt(b.Int, 1),
				Right: hir.NewInt(b.Int, 2),
			}}),
			hir.NewReturn(&hir.Expr{Kind: hir.ExprUnary, Type: b.Bool, Data: hir.UnaryData{
				Op:      hir.UnaryNot,
				Operand: &hir.Expr{Kind: hir.ExprLiteral, Type: b.Bool, Data: hir.LiteralData{Kind: hir.LiteralBool, BoolValue: true}},
			}}),
		),
	}
	count := &hir.Field{Name: "count", Type: b.Int, Static: true, Init: hir.NewCall(nil, next, hir.NewInt(b.Int, 1))}
	rootField := &hir.Field{Name: "root", Type: grid}

	return &hir.Program{
		Name:  "panel",
		Types: in,
		Classes: []*hir.Class{{
			Name:    "Panel",
			Type:    panel,
			Fields:  []*hir.Field{count, rootField},
			Methods: []*hir.Method{next, show},
		}},
	}
}

// sampleJS builds
//
//	function $clinit() {}
//	function helper(a) { return a.x; }
//	var total = helper({x: 1, y: "two"});
//	log(total);
func sampleJS() *js.Program {
	p := &js.Program{Name: "panel"}
	clinit := p.NewName("$clinit", js.NameObfuscatable|js.NameInitializer)
	helper := p.NewName("helper", js.NameObfuscatable)
	a := p.NewName("a", js.NameObfuscatable)
	total := p.NewName("total", js.NameObfuscatable)
	log := p.NewName("log", 0)

	obj := &js.Expr{Kind: js.ExprObject, Data: js.ObjectData{Props: []js.Property{
		{Key: "x", Value: js.NewNumber(1)},
		{Key: "y", Value: js.NewString("two")},
	}}}
	p.Stmts = []*js.Stmt{
		js.NewFunctionDecl(clinit, nil, nil),
		js.NewFunctionDecl(helper, []*js.Name{a}, js.NewBlock(js.NewReturn(js.NewDot(js.NewNameRef(a), "x")))),
		js.NewVar(total, js.NewCall(js.NewNameRef(helper), obj)),
		js.NewExprStmt(js.NewCall(js.NewNameRef(log), js.NewNameRef(total))),
	}
	return p
}

func dumpHIR(t *testing.T, p *hir.Program) string {
	t.Helper()
	var buf bytes.Buffer
	if err := hir.Dump(&buf, p); err != nil {
		t.Fatalf("hir.Dump: %v", err)
	}
	return buf.String()
}

func dumpJS(t *testing.T, p *js.Program) string {
	t.Helper()
	var buf bytes.Buffer
	if err := js.Dump(&buf, p); err != nil {
		t.Fatalf("js.Dump: %v", err)
	}
	return buf.String()
}

func roundTrip(t *testing.T, u *Unit) *Unit {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, u); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

func TestRoundTripPreservesPrograms(t *testing.T) {
	u := &Unit{Name: "panel", HIR: sampleHIR(), JS: sampleJS()}
	got := roundTrip(t, u)

	if got.Name != "panel" {
		t.Fatalf("Name = %q", got.Name)
	}
	if want, have := dumpHIR(t, u.HIR), dumpHIR(t, got.HIR); want != have {
		t.Fatalf("HIR differs:\nwant:\n%s\ngot:\n%s", want, have)
	}
	if want, have := dumpJS(t, u.JS), dumpJS(t, got.JS); want != have {
		t.Fatalf("JS differs:\nwant:\n%s\ngot:\n%s", want, have)
	}
}

func TestRoundTripPreservesTypes(t *testing.T) {
	src := sampleHIR()
	got := roundTrip(t, &Unit{HIR: src}).HIR

	if got.Types.Len() != src.Types.Len() {
		t.Fatalf("Len = %d, want %d", got.Types.Len(), src.Types.Len())
	}
	root, ok := got.Types.LookupNominal("JavaScriptObject")
	if !ok || got.Types.CanonicalWrapper() != root {
		t.Fatalf("wrapper root = %d, JavaScriptObject = %d", got.Types.CanonicalWrapper(), root)
	}
	element, _ := got.Types.LookupNominal("Element")
	if !got.Types.IsWrapper(element) {
		t.Fatalf("Element lost its superclass")
	}
	panel, _ := got.Types.LookupNominal("Panel")
	info, _ := got.Types.Nominal(panel)
	if len(info.Interfaces) != 1 || got.Types.Name(info.Interfaces[0]) != "Shown" {
		t.Fatalf("Panel interfaces = %v", info.Interfaces)
	}
	leaf, dims := got.Types.Leaf(got.Classes[0].FindField("root").Type)
	if leaf != element || dims != 2 {
		t.Fatalf("root field = %d[%d]", leaf, dims)
	}
}

func TestRoundTripPreservesAliasing(t *testing.T) {
	got := roundTrip(t, &Unit{HIR: sampleHIR(), JS: sampleJS()})

	next := got.HIR.Classes[0].FindMethod("next")
	let := next.Body.Stmts[0].Data.(hir.LetData)
	ret := next.Body.Stmts[1].Data.(hir.ReturnData)
	if ret.Value.Data.(hir.LocalRefData).Local != let.Local {
		t.Fatalf("local reference points at a copy")
	}
	if let.Value.Data.(hir.ParamRefData).Param != next.Params[0] {
		t.Fatalf("parameter reference points at a copy")
	}
	init := got.HIR.Classes[0].FindField("count").Init
	if init.Data.(hir.CallData).Method != next {
		t.Fatalf("call target points at a copy")
	}

	prog := got.JS
	_, helper := prog.Stmts[1].FunctionDecl()
	call := prog.Stmts[2].Data.(js.VarData).Init.Data.(js.CallData)
	if call.Callee.Data.(js.NameRefData).Name != helper {
		t.Fatalf("script name reference points at a copy")
	}
	if helper.Index() != 1 || helper.Decl() == nil {
		t.Fatalf("helper index %d, decl %v", helper.Index(), helper.Decl())
	}
	if inits := prog.Initializers(); len(inits) != 1 || inits[0].Ident != "$clinit" {
		t.Fatalf("initializers = %v", inits)
	}
	if log := prog.Names()[4]; log.Obfuscatable() || log.Decl() != nil {
		t.Fatalf("host global log changed: obfuscatable=%v decl=%v", log.Obfuscatable(), log.Decl())
	}
}

func encodeWire(t *testing.T, w wireUnit) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(&w); err != nil {
		t.Fatalf("msgpack: %v", err)
	}
	return &buf
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	_, err := Decode(encodeWire(t, wireUnit{Magic: magic, Schema: SchemaVersion + 1}))
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestDecodeRejectsForeignData(t *testing.T) {
	_, err := Decode(encodeWire(t, wireUnit{Magic: "surprise", Schema: SchemaVersion}))
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if _, err := Decode(strings.NewReader("")); err == nil {
		t.Fatalf("empty input decoded")
	}
}

func TestDecodeRejectsDanglingReferences(t *testing.T) {
	w := wireUnit{Magic: magic, Schema: SchemaVersion, JS: &wireJS{
		Names: []wireName{{Ident: "f"}},
		Stmts: []*wireStmt{{
			Kind: uint8(js.StmtExpr),
			Expr: &wireExpr{Kind: uint8(js.ExprNameRef), Ref: 9},
		}},
	}}
	_, err := Decode(encodeWire(t, w))
	if !errors.Is(err, ErrCorrupt) || !strings.Contains(err.Error(), "name reference 9 out of range") {
		t.Fatalf("expected dangling reference error, got %v", err)
	}

	hw := wireUnit{Magic: magic, Schema: SchemaVersion, HIR: &wireHIR{
		Types: []wireType{
			{Kind: uint8(types.KindVoid)}, {Kind: uint8(types.KindBool)}, {Kind: uint8(types.KindInt)},
			{Kind: uint8(types.KindLong)}, {Kind: uint8(types.KindDouble)}, {Kind: uint8(types.KindString)},
			{Kind: uint8(types.KindNull)},
		},
		Fields: []wireField{{Name: "f", Type: 42}},
	}}
	_, err = Decode(encodeWire(t, hw))
	if !errors.Is(err, ErrCorrupt) || !strings.Contains(err.Error(), "type reference 42 out of range") {
		t.Fatalf("expected type reference error, got %v", err)
	}
}

func TestDecodeRejectsDoubleDeclaration(t *testing.T) {
	fn := &wireStmt{Kind: uint8(js.StmtExpr), Expr: &wireExpr{Kind: uint8(js.ExprFunction), Ref: 1}}
	w := wireUnit{Magic: magic, Schema: SchemaVersion, JS: &wireJS{
		Names: []wireName{{Ident: "f", Flags: uint8(js.NameObfuscatable)}},
		Stmts: []*wireStmt{fn, fn},
	}}
	_, err := Decode(encodeWire(t, w))
	if !errors.Is(err, ErrCorrupt) || errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestEncodeForeignNameIsInternalError(t *testing.T) {
	p := &js.Program{Name: "a"}
	other := &js.Program{Name: "b"}
	stray := other.NewName("stray", 0)
	p.Stmts = []*js.Stmt{js.NewExprStmt(js.NewNameRef(stray))}

	err := Encode(&bytes.Buffer{}, &Unit{JS: p})
	if !errors.Is(err, ice.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "panel"+Ext)
	u := &Unit{Name: "panel", HIR: sampleHIR(), JS: sampleJS()}
	if err := WriteFile(path, u); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "out", ".tmp-*"))
	if err != nil || len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v (%v)", matches, err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if dumpJS(t, got.JS) != dumpJS(t, u.JS) {
		t.Fatalf("script IR changed on disk round trip")
	}

	_, err = ReadFile(filepath.Join(dir, "missing"+Ext))
	if err == nil {
		t.Fatalf("missing file read without error")
	}
}
