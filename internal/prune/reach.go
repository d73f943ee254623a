package prune

import (
	"slices"

	"scriptc/internal/js"
)

// unreachable computes the dead candidates for the reachability strategy.
//
// Roots are every name referenced from top-level code that is not itself a
// candidate declaration, every non-obfuscatable candidate and every
// initializer referenced anywhere. Liveness then follows the references made
// inside live candidate bodies. An initializer nobody references stays dead so
// that the sweep reports it.
func unreachable(prog *js.Program, cands *candidates) (map[*js.Name]*js.Expr, error) {
	edges := make(map[*js.Name][]*js.Name, len(cands.byName))
	referenced := make(map[*js.Name]struct{}, len(cands.byName))
	var roots []*js.Name

	for _, st := range prog.Stmts {
		var owner *js.Name
		if fn, name := st.FunctionDecl(); fn != nil && cands.byName[name] == fn {
			owner = name
		}
		scan := &referenceScanner{ref: func(n *js.Name) {
			referenced[n] = struct{}{}
			if owner == nil {
				roots = append(roots, n)
				return
			}
			edges[owner] = append(edges[owner], n)
		}}
		if _, err := js.Accept(st, scan); err != nil {
			return nil, err
		}
	}

	for _, name := range cands.order {
		if name.IsInitializer() {
			if _, ok := referenced[name]; ok {
				roots = append(roots, name)
			}
			continue
		}
		if !name.Obfuscatable() {
			roots = append(roots, name)
		}
	}

	live := make(map[*js.Name]struct{}, len(cands.byName))
	work := slices.Clone(roots)
	for len(work) > 0 {
		last := len(work) - 1
		name := work[last]
		work = work[:last]
		if _, ok := live[name]; ok {
			continue
		}
		live[name] = struct{}{}
		work = append(work, edges[name]...)
	}

	dead := make(map[*js.Name]*js.Expr, len(cands.byName))
	for name, fn := range cands.byName {
		if _, ok := live[name]; !ok {
			dead[name] = fn
		}
	}
	return dead, nil
}
