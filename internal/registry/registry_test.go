package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func define(t *testing.T, r *Registry, name string, base *Entity) *Entity {
	t.Helper()
	e, err := r.Define(name, base, "test")
	require.NoError(t, err)
	return e
}

func TestDefineAndResolve(t *testing.T) {
	r := New()
	base := define(t, r, "warm.TestCase", nil)
	user := define(t, r, "models.UserTest", base)

	got, ok := r.Resolve("models.UserTest")
	require.True(t, ok)
	require.Same(t, user, got)

	ns, ok := r.Resolve("models")
	require.True(t, ok)
	require.Equal(t, "models", ns.Name)

	_, ok = r.Resolve("models.Missing")
	require.False(t, ok)
	_, ok = r.Resolve("")
	require.False(t, ok)

	_, err := r.Define("bad..name", nil, "test")
	require.Error(t, err)
}

func TestMustResolve(t *testing.T) {
	r := New()
	define(t, r, "a.B", nil)

	e, err := r.MustResolve("a.B")
	require.NoError(t, err)
	require.Equal(t, "a.B", e.Name)

	_, err = r.MustResolve("x.Y")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "x.Y", nf.Name)
	require.Equal(t, "x", nf.Segment)
}

func TestIsLegitimate(t *testing.T) {
	r := New()
	base := define(t, r, "warm.TestCase", nil)
	a := define(t, r, "ATest", base)

	require.True(t, r.IsLegitimate(a))
	require.False(t, r.IsLegitimate(nil))
	require.False(t, r.IsLegitimate(&Entity{}))

	forged := &Entity{Name: "ATest", Base: base}
	require.False(t, r.IsLegitimate(forged))

	_, err := r.Unregister("ATest")
	require.NoError(t, err)
	require.False(t, r.IsLegitimate(a))
}

func TestUnregister(t *testing.T) {
	r := New()
	define(t, r, "ATest", nil)
	b := define(t, r, "m.BTest", nil)

	removed, err := r.Unregister("ATest", "Nope", "m.BTest")
	require.NoError(t, err)
	require.Len(t, removed, 3)
	require.Equal(t, "ATest", removed[0].Name)
	require.Nil(t, removed[1])
	require.Same(t, b, removed[2])

	_, ok := r.Resolve("m.BTest")
	require.False(t, ok)

	removed, err = r.Unregister("ATest")
	require.NoError(t, err)
	require.Equal(t, []*Entity{nil}, removed)

	_, err = r.Unregister("undefined.CTest")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestFindSubtypes(t *testing.T) {
	r := New()
	base := define(t, r, "warm.TestCase", nil)
	mid := define(t, r, "warm.IntegrationTest", base)
	b := define(t, r, "BTest", mid)
	a := define(t, r, "ATest", base)
	define(t, r, "Unrelated", nil)

	require.Equal(t, []*Entity{a, b, mid}, r.FindSubtypes(base, false))
	require.Equal(t, []*Entity{b}, r.FindSubtypes(mid, true))
	require.Empty(t, r.FindSubtypes(a, false))

	_, err := r.Unregister("ATest")
	require.NoError(t, err)
	require.Equal(t, []*Entity{a, b, mid}, r.FindSubtypes(base, false))
	require.Equal(t, []*Entity{b, mid}, r.FindSubtypes(base, true))
}

func TestRedefinitionLeavesStaleEntity(t *testing.T) {
	r := New()
	base := define(t, r, "warm.TestCase", nil)
	old := define(t, r, "ATest", base)
	fresh := define(t, r, "ATest", base)

	require.False(t, r.IsLegitimate(old))
	require.True(t, r.IsLegitimate(fresh))
	require.Len(t, r.FindSubtypes(base, false), 2)
	require.Equal(t, []*Entity{fresh}, r.FindSubtypes(base, true))
}

func TestSweep(t *testing.T) {
	r := New()
	base := define(t, r, "warm.TestCase", nil)
	define(t, r, "m.ATest", base)
	define(t, r, "BTest", base)
	before := r.Live()

	_, err := r.Unregister("BTest", "m")
	require.NoError(t, err)

	// BTest, the m namespace and m.ATest are no longer reachable
	require.Equal(t, 3, r.Sweep())
	require.Equal(t, before-3, r.Live())
	require.Empty(t, r.FindSubtypes(base, false))
	require.Zero(t, r.Sweep())
}
