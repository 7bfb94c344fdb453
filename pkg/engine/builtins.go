package engine

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/chazu/rotor/pkg/so3"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source before passing it to zygomys. It
// performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: axis-angle -> axis_angle
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. Line comments: ; and ;; become //, the zygomys comment syntax.
//
// String literals and comments are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpRotation wraps a rotation in any of the four representations.
type sexpRotation struct {
	rot so3.Rotation
}

func (r *sexpRotation) SexpString(ps *zygo.PrintState) string { return r.rot.String() }
func (r *sexpRotation) Type() *zygo.RegisteredType            { return nil }

// sexpVec3 wraps a vector. Tangent vectors are vectors too.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return "(vec3 " + formatFloat(v.vec.X) + " " + formatFloat(v.vec.Y) + " " + formatFloat(v.vec.Z) + ")"
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of splitting builtin arguments into keyword and
// positional parts.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates keyword arguments from positional ones. A keyword
// consumes the argument that follows it; a trailing keyword maps to nil.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Argument conversion helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toFloats(args []zygo.Sexp) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toKind(s zygo.Sexp) (so3.Kind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected representation keyword (:matrix, :quat, :aa, :rotvec): %w", err)
	}
	return so3.ParseKind(name)
}

func toRotation(s zygo.Sexp) (so3.Rotation, error) {
	if r, ok := s.(*sexpRotation); ok {
		return r.rot, nil
	}
	return nil, fmt.Errorf("expected rotation, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toTangent(s zygo.Sexp) (so3.Tangent, error) {
	v, err := toVec3(s)
	return so3.Tangent(v), err
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// defaultApproxTol is the tolerance approx uses without :tol.
const defaultApproxTol = 1e-9

// registerBuiltins installs the rotation builtins into env. Names are in
// underscore form; scripts may spell them kebab-case.
func registerBuiltins(env *zygo.Zlisp) {

	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		c, err := toFloats(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	env.AddFunction("rotvec", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 1:
			v, err := toVec3(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotvec: %w", err)
			}
			return &sexpRotation{rot: so3.FromRotationVector(v)}, nil
		case 3:
			c, err := toFloats(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotvec: %w", err)
			}
			return &sexpRotation{rot: so3.NewRotationVector(c[0], c[1], c[2])}, nil
		}
		return zygo.SexpNull, fmt.Errorf("rotvec requires a vec3 or 3 numbers, got %d arguments", len(args))
	})

	env.AddFunction("quat", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("quat requires exactly 4 arguments (w x y z), got %d", len(args))
		}
		c, err := toFloats(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("quat: %w", err)
		}
		q := so3.Wrap(so3.Quaternion{Real: c[0], Imag: c[1], Jmag: c[2], Kmag: c[3]})
		if q.RepData().Norm() == 0 {
			return zygo.SexpNull, fmt.Errorf("quat: zero quaternion")
		}
		q.Renormalize()
		return &sexpRotation{rot: q}, nil
	})

	env.AddFunction("axis_angle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("axis-angle requires an axis and an angle, got %d arguments", len(args))
		}
		axis, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("axis-angle: axis: %w", err)
		}
		if r3.Norm(axis) == 0 {
			return zygo.SexpNull, fmt.Errorf("axis-angle: zero axis")
		}
		angle, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("axis-angle: angle: %w", err)
		}
		return &sexpRotation{rot: so3.FromAxisAngle(axis, angle)}, nil
	})

	env.AddFunction("matrix", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 1:
			r, err := toRotation(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("matrix: %w", err)
			}
			return &sexpRotation{rot: as[so3.RotationMatrix](r)}, nil
		case 9:
			c, err := toFloats(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("matrix: %w", err)
			}
			var m so3.RotationMatrix
			copy(m[:], c)
			s := so3.Wrap(m)
			if !s.IsValid(matrixTolerance) {
				return zygo.SexpNull, fmt.Errorf("matrix: not a rotation (rows must be orthonormal with determinant +1)")
			}
			return &sexpRotation{rot: s}, nil
		}
		return zygo.SexpNull, fmt.Errorf("matrix requires a rotation or 9 numbers in row-major order, got %d arguments", len(args))
	})

	env.AddFunction("convert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("convert requires a rotation and a representation, got %d arguments", len(args))
		}
		r, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("convert: %w", err)
		}
		k, err := toKind(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("convert: %w", err)
		}
		out, err := convertRotation(k, r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("convert: %w", err)
		}
		return &sexpRotation{rot: out}, nil
	})

	env.AddFunction("compose", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("compose requires at least one rotation")
		}
		acc, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("compose: argument 1: %w", err)
		}
		for i, a := range args[1:] {
			r, err := toRotation(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compose: argument %d: %w", i+2, err)
			}
			acc = compose(acc, r)
		}
		return &sexpRotation{rot: acc}, nil
	})

	env.AddFunction("inverse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("inverse requires exactly 1 argument, got %d", len(args))
		}
		r, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inverse: %w", err)
		}
		return &sexpRotation{rot: invert(r)}, nil
	})

	env.AddFunction("exp", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("exp requires a tangent vec3")
		}
		v, err := toTangent(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("exp: %w", err)
		}
		k := so3.KindRotationVector
		if a, ok := pa.kw["as"]; ok {
			if k, err = toKind(a); err != nil {
				return zygo.SexpNull, fmt.Errorf("exp: as: %w", err)
			}
		}
		r, err := expAs(k, v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("exp: %w", err)
		}
		return &sexpRotation{rot: r}, nil
	})

	env.AddFunction("log", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("log requires exactly 1 argument, got %d", len(args))
		}
		r, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("log: %w", err)
		}
		return &sexpVec3{vec: r.Log().Vec()}, nil
	})

	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a rotation and a vec3, got %d arguments", len(args))
		}
		r, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		p, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		return &sexpVec3{vec: r.Rotate(p)}, nil
	})

	env.AddFunction("angle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 && len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("angle requires 1 or 2 rotations, got %d arguments", len(args))
		}
		a, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: %w", err)
		}
		if len(args) == 1 {
			return &zygo.SexpFloat{Val: a.Log().Norm()}, nil
		}
		b, err := toRotation(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: %w", err)
		}
		return &zygo.SexpFloat{Val: so3.AngleBetween(a, b)}, nil
	})

	env.AddFunction("is_identity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("is-identity requires exactly 1 argument, got %d", len(args))
		}
		r, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("is-identity: %w", err)
		}
		return &zygo.SexpBool{Val: r.IsIdentity()}, nil
	})

	env.AddFunction("approx", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("approx requires two rotations")
		}
		a, err := toRotation(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("approx: %w", err)
		}
		b, err := toRotation(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("approx: %w", err)
		}
		tol := defaultApproxTol
		if v, ok := pa.kw["tol"]; ok {
			if tol, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("approx: tol: %w", err)
			}
		}
		return &zygo.SexpBool{Val: so3.Approx(a, b, tol)}, nil
	})

	env.AddFunction("slerp", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("slerp requires two rotations and a fraction, got %d arguments", len(args))
		}
		a, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slerp: %w", err)
		}
		b, err := toRotation(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slerp: %w", err)
		}
		t, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("slerp: %w", err)
		}
		return &sexpRotation{rot: slerp(a, b, t)}, nil
	})

	env.AddFunction("random", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		k := so3.KindQuaternion
		var err error
		if a, ok := pa.kw["as"]; ok {
			if k, err = toKind(a); err != nil {
				return zygo.SexpNull, fmt.Errorf("random: as: %w", err)
			}
		}
		var rnd *rand.Rand
		if v, ok := pa.kw["seed"]; ok {
			seed, ok := v.(*zygo.SexpInt)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("random: seed: expected integer, got %s", v.SexpString(nil))
			}
			rnd = rand.New(rand.NewSource(seed.Val))
		}
		r, err := randomAs(k, rnd)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("random: %w", err)
		}
		return &sexpRotation{rot: r}, nil
	})

	env.AddFunction("kind", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("kind requires exactly 1 argument, got %d", len(args))
		}
		r, err := toRotation(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("kind: %w", err)
		}
		return &zygo.SexpStr{S: r.Kind().String()}, nil
	})
}
