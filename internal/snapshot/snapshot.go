// Package snapshot stores a compilation unit, its object-model IR and its
// script IR, as a msgpack file.
//
// Declarations, types and names are written once into tables and referenced by
// index, so a decoded unit has the same aliasing as the encoded one: every
// reference to a local, parameter, field, method or script Name points at the
// single shared object again.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"scriptc/internal/hir"
	"scriptc/internal/ice"
	"scriptc/internal/js"
)

// SchemaVersion is the current snapshot format; increment when the wire
// structures change.
const SchemaVersion uint16 = 1

const magic = "scriptc-snapshot"

// Ext is the conventional snapshot file extension.
const Ext = ".snap"

var (
	// ErrSchema reports a snapshot written with another schema version.
	ErrSchema = errors.New("unsupported snapshot schema")
	// ErrCorrupt reports a snapshot whose tables or references are inconsistent.
	ErrCorrupt = errors.New("corrupt snapshot")
)

// Unit is one compilation unit handed to the optimizer.
type Unit struct {
	Name string
	HIR  *hir.Program // may be nil
	JS   *js.Program  // may be nil
}

// Encode writes u to w.
func Encode(w io.Writer, u *Unit) (err error) {
	if u == nil {
		return fmt.Errorf("snapshot: nil unit")
	}
	defer ice.Recover(&err)

	payload := wireUnit{
		Magic:  magic,
		Schema: SchemaVersion,
		Name:   u.Name,
	}
	if u.HIR != nil {
		payload.HIR, err = encodeHIR(u.HIR)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if u.JS != nil {
		payload.JS, err = encodeJS(u.JS)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if err := msgpack.NewEncoder(w).Encode(&payload); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return nil
}

// Decode reads a unit from r. The decoded IR is validated with hir.Validate
// and js.Validate before it is returned.
func Decode(r io.Reader) (*Unit, error) {
	var payload wireUnit
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if payload.Magic != magic {
		return nil, fmt.Errorf("snapshot: %w: not a scriptc snapshot", ErrCorrupt)
	}
	if payload.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot: %w: version %d, expected %d", ErrSchema, payload.Schema, SchemaVersion)
	}

	u := &Unit{Name: payload.Name}
	if payload.HIR != nil {
		prog, err := decodeHIR(payload.HIR)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		if err := hir.Validate(prog); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		u.HIR = prog
	}
	if payload.JS != nil {
		prog, err := decodeJS(payload.JS)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		if err := js.Validate(prog); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		u.JS = prog
	}
	return u, nil
}

// ReadFile decodes the snapshot at path.
func ReadFile(path string) (*Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	u, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// WriteFile encodes u to path atomically: the data goes to a temporary file in
// the same directory which then replaces path.
func WriteFile(path string, u *Unit) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*"+Ext)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, u); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
