package step

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptional_Variants(t *testing.T) {
	cases := []struct {
		in        string
		omitted   bool
		inherited bool
		custom    bool
	}{
		{"$", true, false, false},
		{"*", false, true, false},
		{"'Wall'", false, false, true},
	}
	for _, tc := range cases {
		var o Optional[Label]
		require.NoError(t, o.Scan(NewScanner(tc.in)), tc.in)
		require.Equal(t, tc.omitted, o.IsOmitted(), tc.in)
		require.Equal(t, tc.inherited, o.IsInherited(), tc.in)
		require.Equal(t, tc.custom, o.IsCustom(), tc.in)
		require.Equal(t, tc.in, o.String())
	}
}

func TestOptional_ParsePrintIdentity(t *testing.T) {
	values := []Optional[Label]{
		Omit[Label](),
		Inherit[Label](),
		Some(NewLabel("x")),
	}
	for _, v := range values {
		var got Optional[Label]
		require.NoError(t, got.Scan(NewScanner(v.String())))
		require.Equal(t, v, got)
	}
}

func TestOptional_ZeroValueIsOmitted(t *testing.T) {
	var o Optional[Real]
	require.True(t, o.IsOmitted())
	require.Equal(t, "$", o.String())
	_, ok := o.Custom()
	require.False(t, ok)
	require.Nil(t, o.CustomPtr())
}

func TestOptional_CustomPtrEditsInPlace(t *testing.T) {
	o := Some(List[Integer]{1})
	*o.CustomPtr() = append(*o.CustomPtr(), 2)
	require.Equal(t, "(1,2)", o.String())
}

func TestOptional_MustCustomPanicsOnMarker(t *testing.T) {
	require.Panics(t, func() { Inherit[Label]().MustCustom() })
	require.Equal(t, Integer(4), Some(Integer(4)).MustCustom())
}

func TestOptional_FallbackKeepsText(t *testing.T) {
	s := NewScanner("IFCLENGTHMEASURE(2.5) ,'next'")
	var o Optional[Label]
	require.NoError(t, o.Scan(s))
	require.True(t, o.IsRaw())
	require.Equal(t, "IFCLENGTHMEASURE(2.5)", o.Raw())
	require.Equal(t, "IFCLENGTHMEASURE(2.5)", o.String())
	require.NoError(t, s.Expect(","))

	var next Optional[Label]
	require.NoError(t, next.Scan(s))
	require.Equal(t, "next", next.MustCustom().Text())
}

func TestOptional_FallbackStopsAtClosingParen(t *testing.T) {
	s := NewScanner("(.X.,(1,'a,b'))")
	var l List[Optional[Integer]]
	require.NoError(t, l.Scan(s))
	require.Len(t, l, 2)
	require.True(t, l[0].IsRaw())
	require.Equal(t, "(1,'a,b')", l[1].Raw())
	require.Equal(t, "(.X.,(1,'a,b'))", l.String())
}

func TestOptional_StrictRejectsMismatch(t *testing.T) {
	s := NewScanner("12").Strict(true)
	var o Optional[Label]
	err := o.Scan(s)
	require.Error(t, err)
	require.IsType(t, &ParseError{}, err)
	require.Equal(t, 0, s.Pos())
}

func TestOptional_NothingToCapture(t *testing.T) {
	s := NewScanner(",")
	var o Optional[Label]
	require.Error(t, o.Scan(s))
	require.Equal(t, 0, s.Pos())
}
