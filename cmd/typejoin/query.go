package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/vito/typejoin/pkg/conform"
	"github.com/vito/typejoin/pkg/universe"
)

// undefined is how a join without a result is rendered and expected.
const undefined = "undefined"

type outcome struct {
	Query universe.Query

	// Join is the computed common supertype; nil when undefined.
	Join conform.Type

	Conformance conform.Result
	Conformant  bool
	// Mismatch is the conform.ConformanceError of a failed check.
	Mismatch error

	Rendered string
	Matched  bool
	Err      error
}

// Failed reports whether the query errored or missed its expectation.
func (o outcome) Failed() bool {
	return o.Err != nil || !o.Matched
}

func evaluate(c *conform.Computer, u *universe.Universe, q universe.Query) outcome {
	o := outcome{Query: q}
	if err := q.Validate(); err != nil {
		o.Err = err
		return o
	}
	if len(q.Conform) > 0 {
		o.Err = evaluateConform(c, u, &o)
	} else {
		o.Err = evaluateJoin(c, u, &o)
	}
	return o
}

func evaluateJoin(c *conform.Computer, u *universe.Universe, o *outcome) error {
	types, err := u.ParseAll(o.Query.Join)
	if err != nil {
		return err
	}
	result, err := c.CommonSuperType(types)
	if err != nil {
		return errors.Wrapf(err, "query %s", o.Query.Label())
	}
	o.Join = result
	o.Rendered = undefined
	if result != nil {
		o.Rendered = result.String()
	}

	switch o.Query.Expect {
	case "":
		o.Matched = true
	case undefined:
		o.Matched = result == nil
	default:
		expected, err := u.Parse(o.Query.Expect)
		if err != nil {
			return errors.Wrapf(err, "query %s: expect", o.Query.Label())
		}
		o.Matched = result != nil && expected.Eq(result)
	}
	return nil
}

func evaluateConform(c *conform.Computer, u *universe.Universe, o *outcome) error {
	types, err := u.ParseAll(o.Query.Conform)
	if err != nil {
		return err
	}
	res, mismatch := c.Check(types[0], types[1])
	o.Conformance = res
	o.Conformant = res.IsConformant()
	o.Mismatch = mismatch
	o.Rendered = res.String()

	if o.Query.Expect == "" {
		o.Matched = true
		return nil
	}
	want, err := strconv.ParseBool(o.Query.Expect)
	if err != nil {
		return errors.Errorf("query %s: expect must be true or false, got %q", o.Query.Label(), o.Query.Expect)
	}
	o.Matched = want == o.Conformant
	return nil
}
