package environment

import (
	"fmt"

	"warmtest/internal/domain"
	"warmtest/internal/execution"
	"warmtest/internal/registry"
)

// execute parses the source file at path and applies it: variables are
// exported, then categories and suites are defined in file order.
func (e *Environment) execute(path string) error {
	src, err := e.parser.ParseFile(path)
	if err != nil {
		return err
	}

	for k, v := range src.Env {
		e.setVar(k, v)
	}

	for _, c := range src.Categories {
		var base *registry.Entity
		if c.Base != "" {
			if base, err = e.reg.MustResolve(c.Base); err != nil {
				return fmt.Errorf("%s: category %s: %w", path, c.Name, err)
			}
		}
		if _, err := e.reg.Define(c.Name, base, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, s := range src.Suites {
		baseName := s.Base
		if baseName == "" {
			baseName = CategoryTestCase
		}
		base, err := e.reg.MustResolve(baseName)
		if err != nil {
			return fmt.Errorf("%s: suite %s: %w", path, s.Name, err)
		}

		cases := make([]domain.TestCase, 0, len(s.Tests))
		for _, spec := range s.Tests {
			cases = append(cases, domain.TestCase{Name: spec.Name, Func: execution.ShellCase(spec)})
		}
		if _, err := e.reg.Define(s.Name, base, path, cases...); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
