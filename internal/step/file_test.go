package step

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/starford/ifcstep/internal/apperr"
)

const demoHeader = "ISO-10303-21;\n" +
	"HEADER;\n" +
	"FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');\n" +
	"FILE_NAME('demo.ifc','2024-01-01T00:00:00',('Mario'),('Metabuild'),'','','');\n" +
	"FILE_SCHEMA(('IFC4'));\n" +
	"ENDSEC;\n" +
	"\n" +
	"DATA;\n"

const demoFooter = "ENDSEC;\n" +
	"END-ISO-10303-21;\n"

const demoFile = demoHeader +
	"#1=IFCLABEL('Hello');\n" +
	"#2=IFCWALL(#1,$,*);\n" +
	demoFooter

func TestParse_RoundTrip(t *testing.T) {
	f, err := Parse(demoFile)
	require.NoError(t, err)
	if diff := cmp.Diff(demoFile, f.String()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, []ID{1, 2}, f.Data.IDs())
	require.Equal(t, []string{"IFC4"}, f.Header.Schema.Names())
	require.Equal(t, "demo.ifc", f.Header.Name.Name.Text())
	require.Equal(t, "Mario", f.Header.Name.Author[0].Text())

	rec, err := f.Data.Record(2)
	require.NoError(t, err)
	args, err := rec.Args()
	require.NoError(t, err)
	require.Len(t, args, 3)
	require.Equal(t, ID(1), args[0])
	require.Equal(t, Omitted{}, args[1])
	require.Equal(t, Inherited{}, args[2])
}

func TestParse_RoundTripPreservesTrivia(t *testing.T) {
	inputs := map[string]string{
		"comments": "/* exported */ISO-10303-21;\nHEADER;\n/* meta */\n" +
			"FILE_DESCRIPTION( ( 'a' ) , '2;1' );\n" +
			"FILE_NAME('n','t',(''),(''),'','','');FILE_SCHEMA(('IFC2X3'));\n" +
			"ENDSEC;DATA;\n" +
			"#10= IFCLABEL ( 'x' ) ;\n/* between */\n\n" +
			"#5=IFCWALL(#10,'d',$);" +
			"ENDSEC;\nEND-ISO-10303-21;\n/* trailing */\n",
		"crlf":                         strings.ReplaceAll(demoFile, "\n", "\r\n"),
		"tabs and no trailing newline": strings.ReplaceAll(strings.TrimSuffix(demoFile, "\n"), "\n", "\n\t"),
		"unknown entities": demoHeader +
			"#1=IFCFUTURETHING(1,2.50,'x',(#1,#2),.ENUM.,IFCREAL(1.E-3),\"0FF\");\n" +
			"#2=(IFCA(1)IFCB(#1,$));\n" +
			"#3=!USERDEFINED(*);\n" +
			demoFooter,
		"empty data section": demoHeader + demoFooter,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			f, err := Parse(in)
			require.NoError(t, err)
			if diff := cmp.Diff(in, f.String()); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_WriteTo(t *testing.T) {
	f, err := Parse(demoFile)
	require.NoError(t, err)
	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len(demoFile)), n)
	require.Equal(t, demoFile, buf.String())
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":             "",
		"truncated header":  "ISO-10303-21;\nHEADER;\n",
		"missing data":      strings.TrimSuffix(demoHeader, "DATA;\n"),
		"missing semicolon": demoHeader + "#1=IFCLABEL('x')\n" + demoFooter,
		"unbalanced":        demoHeader + "#1=IFCLABEL(('x');\n" + demoFooter,
		"unterminated str":  demoHeader + "#1=IFCLABEL('x);\n" + demoFooter,
		"no footer":         demoHeader + "#1=IFCLABEL('x');\n",
		"trailing content":  demoFile + "#9=IFCLABEL('late');\n",
		"bad header args":   strings.Replace(demoFile, "FILE_SCHEMA(('IFC4'))", "FILE_SCHEMA('IFC4')", 1),
		"missing id":        demoHeader + "#=IFCLABEL('x');\n" + demoFooter,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := Parse(in)
			require.Nil(t, f)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			require.Positive(t, pe.Line)
		})
	}
}

func TestParse_DuplicateID(t *testing.T) {
	in := demoHeader + "#1=IFCLABEL('a');\n#1=IFCLABEL('b');\n" + demoFooter
	_, err := Parse(in)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
	require.Equal(t, 10, pe.Line)
	require.Equal(t, 1, pe.Column)
}

func TestParse_UnknownKeywordFailsDecode(t *testing.T) {
	f, err := Parse(demoHeader + "#1=IFCFUTURETHING('x');\n" + demoFooter)
	require.NoError(t, err)

	kw, err := f.Data.Keyword(1)
	require.NoError(t, err)
	require.Equal(t, "IFCFUTURETHING", kw)

	_, err = Get(f.Data, Typed[testLabel](1))
	require.ErrorIs(t, err, apperr.ErrTypeMismatch)
}

func TestParse_ComplexInstance(t *testing.T) {
	f, err := Parse(demoHeader + "#1=IFCLABEL('a');\n#2=(IFCA(1)IFCB(#1,$));\n" + demoFooter)
	require.NoError(t, err)

	rec, err := f.Data.Record(2)
	require.NoError(t, err)
	require.Equal(t, "", rec.Keyword())
	require.Equal(t, "(IFCA(1)IFCB(#1,$))", rec.String())

	parts, err := rec.Parts()
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, "IFCB(#1,$)", parts[1].String())

	refs, err := f.Data.References(2)
	require.NoError(t, err)
	require.Equal(t, []ID{1}, refs)
}

func TestGetMut_UnchangedKeepsSourceText(t *testing.T) {
	in := demoHeader + "#1=IFCLABEL( 'Hello' );\n#2=IFCWALL( #1 ,$,* );\n" + demoFooter
	f, err := Parse(in)
	require.NoError(t, err)

	_, err = GetMut(f.Data, Typed[testWall](2))
	require.NoError(t, err)
	_, err = GetMut(f.Data, Typed[testLabel](1))
	require.NoError(t, err)
	require.Equal(t, in, f.String())
}

func TestGetMut_EditPrintsCanonically(t *testing.T) {
	in := demoHeader + "#1=IFCLABEL( 'Hello' );\n/* wall */ #2=IFCWALL( #1 ,$,* );\n" + demoFooter
	f, err := Parse(in)
	require.NoError(t, err)

	w, err := GetMut(f.Data, Typed[testWall](2))
	require.NoError(t, err)
	w.Tag = Some(NewLabel("W-01"))

	want := demoHeader + "#1=IFCLABEL( 'Hello' );\n/* wall */ #2=IFCWALL(#1,$,'W-01');\n" + demoFooter
	require.Equal(t, want, f.String())

	again, err := Parse(f.String())
	require.NoError(t, err)
	got, err := Get(again.Data, Typed[testWall](2))
	require.NoError(t, err)
	require.Equal(t, "W-01", got.Tag.MustCustom().Text())
}

func TestHeader_EditPrintsCanonically(t *testing.T) {
	in := strings.Replace(demoFile, "FILE_SCHEMA(('IFC4'));", "FILE_SCHEMA( ('IFC4') );", 1)
	f, err := Parse(in)
	require.NoError(t, err)
	require.Equal(t, in, f.String())

	f.Header.Name.Name = NewLabel("renamed.ifc")
	want := strings.Replace(in, "FILE_NAME('demo.ifc'", "FILE_NAME('renamed.ifc'", 1)
	require.Equal(t, want, f.String())
}

func TestParse_FallbackAndStrict(t *testing.T) {
	in := demoHeader + "#1=IFCLABEL('a');\n#2=IFCWALL(#1,IFCTEXT('x'),$);\n" + demoFooter

	f, err := Parse(in)
	require.NoError(t, err)
	w, err := Get(f.Data, Typed[testWall](2))
	require.NoError(t, err)
	require.True(t, w.Description.IsRaw())
	require.Equal(t, "IFCTEXT('x')", w.Description.Raw())

	strict, err := ParseWithOptions(in, ParseOptions{Strict: true})
	require.NoError(t, err)
	require.Equal(t, in, strict.String())
	_, err = Get(strict.Data, Typed[testWall](2))
	require.ErrorIs(t, err, apperr.ErrTypeMismatch)
}

func TestNewFile_PrintsCanonically(t *testing.T) {
	f := NewFile("IFC4", "demo.ifc")
	label := InsertNew(f.Data, &testLabel{Value: NewLabel("Hello")})
	InsertNew(f.Data, &testWall{
		Name: Some(label),
		Tag:  Inherit[Label](),
	})

	want := "ISO-10303-21;\n" +
		"HEADER;\n" +
		"FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');\n" +
		"FILE_NAME('demo.ifc','',(''),(''),'','','');\n" +
		"FILE_SCHEMA(('IFC4'));\n" +
		"ENDSEC;\n" +
		"\n" +
		"DATA;\n" +
		"#1=IFCLABEL('Hello');\n" +
		"#2=IFCWALL(#1,$,*);\n" +
		demoFooter
	require.Equal(t, want, f.String())

	again, err := Parse(want)
	require.NoError(t, err)
	require.Equal(t, want, again.String())
	w, err := Get(again.Data, Typed[testWall](2))
	require.NoError(t, err)
	require.Equal(t, label, w.Name.MustCustom())
}

func TestParse_InsertAfterParse(t *testing.T) {
	f, err := Parse(demoFile)
	require.NoError(t, err)
	id := InsertNew(f.Data, &testLabel{Value: NewLabel("World")})
	require.Equal(t, ID(3), id.ID())

	want := strings.Replace(demoFile, "#2=IFCWALL(#1,$,*);\n", "#2=IFCWALL(#1,$,*);\n#3=IFCLABEL('World');\n", 1)
	require.Equal(t, want, f.String())
	_, err = Parse(f.String())
	require.NoError(t, err)
}

func TestParseError_Unwrap(t *testing.T) {
	base := errors.New("inner")
	pe := &ParseError{Expected: "x", Found: "y", Line: 1, Column: 1, Err: base}
	require.ErrorIs(t, pe, base)
	require.Contains(t, pe.Error(), "line 1")
}
