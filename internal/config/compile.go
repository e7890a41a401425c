package config

import (
	_ "embed"
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/janus/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// CompileError represents a runtime description error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileRuntime validates v against the #Runtime schema and compiles it.
// v must come from the same cue.Context the schema is compiled in.
func CompileRuntime(v cue.Value) (*Runtime, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v = schema.LookupPath(cue.ParsePath("#Runtime")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	rt := &Runtime{Accounts: map[string]ir.AccountID{}}

	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rt.Name = name

	rt.Pallets, err = parsePallets(v.LookupPath(cue.ParsePath("pallets")))
	if err != nil {
		return nil, err
	}
	if len(rt.Pallets) == 0 {
		return nil, &CompileError{
			Field:   "pallets",
			Message: "at least one pallet is required",
			Pos:     v.Pos(),
		}
	}

	var accounts map[string]string
	if err := v.LookupPath(cue.ParsePath("accounts")).Decode(&accounts); err != nil {
		return nil, formatCUEError(err)
	}
	for name, id := range accounts {
		rt.Accounts[name] = ir.AccountID(id)
	}

	rt.StrictAccounts, err = v.LookupPath(cue.ParsePath("strict_accounts")).Bool()
	if err != nil {
		return nil, formatCUEError(err)
	}

	return rt, nil
}

// parsePallets extracts pallet bindings, sorted by index.
// Indices must be unique across the runtime, names unique within a pallet.
func parsePallets(v cue.Value) ([]Pallet, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var pallets []Pallet
	byIndex := map[uint8]string{}
	for iter.Next() {
		name := iter.Label()
		pv := iter.Value()

		idx, err := pv.LookupPath(cue.ParsePath("index")).Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		p := Pallet{Name: name, Index: uint8(idx)}
		if other, dup := byIndex[p.Index]; dup {
			return nil, &CompileError{
				Field:   fmt.Sprintf("pallets.%s.index", name),
				Message: fmt.Sprintf("index %d already used by pallet %s", idx, other),
				Pos:     pv.LookupPath(cue.ParsePath("index")).Pos(),
			}
		}
		byIndex[p.Index] = name

		p.Calls, err = parseNames(pv, name, "calls")
		if err != nil {
			return nil, err
		}
		p.Events, err = parseNames(pv, name, "events")
		if err != nil {
			return nil, err
		}
		if len(p.Events) > 256 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("pallets.%s.events", name),
				Message: fmt.Sprintf("%d events exceed the 256 an index can address", len(p.Events)),
				Pos:     pv.Pos(),
			}
		}

		pallets = append(pallets, p)
	}

	slices.SortFunc(pallets, func(a, b Pallet) int { return int(a.Index) - int(b.Index) })
	return pallets, nil
}

func parseNames(pallet cue.Value, palletName, field string) ([]string, error) {
	lv := pallet.LookupPath(cue.ParsePath(field))
	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var names []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if s == "" || slices.Contains(names, s) {
			return nil, &CompileError{
				Field:   fmt.Sprintf("pallets.%s.%s", palletName, field),
				Message: fmt.Sprintf("empty or duplicate name %q", s),
				Pos:     iter.Value().Pos(),
			}
		}
		names = append(names, s)
	}
	return names, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
