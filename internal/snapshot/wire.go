package snapshot

// Wire structures. Table references are 1-based so that 0 means "none".

type wireUnit struct {
	Magic  string   `msgpack:"magic"`
	Schema uint16   `msgpack:"schema"`
	Name   string   `msgpack:"name"`
	HIR    *wireHIR `msgpack:"hir,omitempty"`
	JS     *wireJS  `msgpack:"js,omitempty"`
}

type wireHIR struct {
	Name    string        `msgpack:"name"`
	Types   []wireType    `msgpack:"types"` // TypeIDs 1..n in order
	Wrapper uint32        `msgpack:"wrapper,omitempty"`
	Classes []wireClass   `msgpack:"classes"`
	Fields  []wireField   `msgpack:"fields"`
	Methods []wireMethod  `msgpack:"methods"`
	Params  []wireBinding `msgpack:"params"`
	Locals  []wireBinding `msgpack:"locals"`
}

type wireType struct {
	Kind       uint8    `msgpack:"k"`
	Elem       uint32   `msgpack:"e,omitempty"`
	Dims       uint32   `msgpack:"d,omitempty"`
	Name       string   `msgpack:"n,omitempty"`
	Super      uint32   `msgpack:"s,omitempty"`
	Interfaces []uint32 `msgpack:"i,omitempty"`
}

type wireClass struct {
	Name    string   `msgpack:"name"`
	Type    uint32   `msgpack:"type"`
	Fields  []uint32 `msgpack:"fields"`
	Methods []uint32 `msgpack:"methods"`
}

type wireField struct {
	Name   string    `msgpack:"name"`
	Type   uint32    `msgpack:"type"`
	Static bool      `msgpack:"static,omitempty"`
	Init   *wireExpr `msgpack:"init,omitempty"`
}

type wireMethod struct {
	Name   string     `msgpack:"name"`
	Params []uint32   `msgpack:"params"`
	Result uint32     `msgpack:"result"`
	Flags  uint32     `msgpack:"flags,omitempty"`
	Body   *wireBlock `msgpack:"body,omitempty"`
}

type wireBinding struct {
	Name string `msgpack:"name"`
	Type uint32 `msgpack:"type"`
}

type wireBlock struct {
	Stmts []*wireStmt `msgpack:"s"`
}

// wireStmt covers both IRs. Expr carries the single expression operand of a
// statement (let/var value, condition, return or thrown value), Then and Else
// the nested blocks (if branches, loop body, block statement).
type wireStmt struct {
	Kind uint8      `msgpack:"k"`
	Ref  uint32     `msgpack:"r,omitempty"` // let local or var name
	Expr *wireExpr  `msgpack:"x,omitempty"`
	Then *wireBlock `msgpack:"t,omitempty"`
	Else *wireBlock `msgpack:"e,omitempty"`
}

// wireExpr covers both IRs. Kids holds the leading operands in field order
// (dimension sizes for array allocations), List the trailing variable-length
// operands (arguments, array or object elements).
type wireExpr struct {
	Kind   uint8       `msgpack:"k"`
	Type   uint32      `msgpack:"t,omitempty"`  // result type (HIR)
	Ref    uint32      `msgpack:"r,omitempty"`  // referenced declaration or name
	TypeOp uint32      `msgpack:"to,omitempty"` // cast target, instanceof test, class literal, array element
	Op     string      `msgpack:"op,omitempty"` // operator spelling or property name
	Lit    *wireLit    `msgpack:"l,omitempty"`
	Kids   []*wireExpr `msgpack:"c,omitempty"`
	List   []*wireExpr `msgpack:"a,omitempty"`
	Keys   []string    `msgpack:"keys,omitempty"` // object literal keys, parallel to List
	Params []uint32    `msgpack:"p,omitempty"`    // function parameters (script IR)
	Body   *wireBlock  `msgpack:"b,omitempty"`    // function body (script IR)
}

type wireLit struct {
	Kind   uint8   `msgpack:"k"`
	Int    int64   `msgpack:"i,omitempty"`
	Float  float64 `msgpack:"f,omitempty"`
	Bool   bool    `msgpack:"b,omitempty"`
	String string  `msgpack:"s,omitempty"`
}

type wireJS struct {
	Name  string      `msgpack:"name"`
	Names []wireName  `msgpack:"names"`
	Stmts []*wireStmt `msgpack:"stmts"`
}

type wireName struct {
	Ident string `msgpack:"ident"`
	Flags uint8  `msgpack:"flags,omitempty"`
}
