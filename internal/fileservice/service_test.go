package fileservice

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/starford/ifcstep/internal/apperr"
	"github.com/starford/ifcstep/internal/checksum"
	"github.com/starford/ifcstep/internal/index"
	"github.com/starford/ifcstep/internal/parser"
	"github.com/starford/ifcstep/internal/testutil"
)

func testService(t *testing.T) (*Service, string) {
	t.Helper()
	dir, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	return NewService(store, db, parser.Options{Workers: 2}), dir
}

func TestCreateAndGetFile(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	sum, err := svc.CreateFile(ctx, "site/house.ifc", []byte(testutil.Model))
	require.NoError(t, err)
	require.Equal(t, "IFC4", sum.Schema)
	require.Equal(t, "house.ifc", sum.Name)
	require.Equal(t, 6, sum.Entities)
	require.Empty(t, sum.Problems)
	require.Equal(t, checksum.Sum([]byte(testutil.Model)), sum.Checksum)

	got, err := svc.GetFile(ctx, "site/house.ifc")
	require.NoError(t, err)
	if diff := cmp.Diff(sum, got); diff != "" {
		t.Errorf("GetFile mismatch (-create +get):\n%s", diff)
	}

	data, err := svc.ReadFile(ctx, "site/house.ifc")
	require.NoError(t, err)
	require.Equal(t, testutil.Model, string(data))

	_, err = svc.CreateFile(ctx, "site/house.ifc", []byte(testutil.Model))
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestCreateFile_Rejects(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.CreateFile(ctx, "notes.txt", []byte(testutil.Model))
	require.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.CreateFile(ctx, "broken.ifc", []byte("ISO-10303-21;\nHEADER;\n"))
	require.ErrorIs(t, err, apperr.ErrInvalid)

	dup := strings.Replace(testutil.Model, "#2=", "#1=", 1)
	_, err = svc.CreateFile(ctx, "dup.ifc", []byte(dup))
	require.ErrorIs(t, err, apperr.ErrInvalid)
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = svc.GetFile(ctx, "broken.ifc")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateFile_OptimisticConcurrency(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	first, err := svc.CreateFile(ctx, "m.ifc", []byte(testutil.Model))
	require.NoError(t, err)

	edited := strings.Replace(testutil.Model, "'North wall'", "'South wall'", 1)
	_, err = svc.UpdateFile(ctx, "m.ifc", []byte(edited), "stale")
	require.ErrorIs(t, err, apperr.ErrConflict)

	second, err := svc.UpdateFile(ctx, "m.ifc", []byte(edited), first.Checksum)
	require.NoError(t, err)
	require.NotEqual(t, first.Checksum, second.Checksum)

	walls, err := svc.FindEntities(ctx, index.EntityQuery{Keyword: "IFCWALL"})
	require.NoError(t, err)
	require.Len(t, walls, 1)
	require.Equal(t, "South wall", walls[0].Name)

	_, err = svc.UpdateFile(ctx, "missing.ifc", []byte(edited), "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetEntity(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "house.ifc", testutil.Model)

	wall, err := svc.GetEntity(ctx, "house.ifc", 3)
	require.NoError(t, err)
	want := &EntityDetail{
		File:     "house.ifc",
		ID:       3,
		Keyword:  "IFCWALL",
		GlobalID: "3vB2YO$MX4xv5uCqZZG05x",
		Name:     "North wall",
		Text:     "#3=IFCWALL('3vB2YO$MX4xv5uCqZZG05x',$,'North wall',$,$,#2,$,'W-01',.STANDARD.)",
		Args: []string{"'3vB2YO$MX4xv5uCqZZG05x'", "$", "'North wall'", "$", "$",
			"#2", "$", "'W-01'", ".STANDARD."},
		References: []uint64{2},
		Referrers:  []uint64{5, 6},
	}
	if diff := cmp.Diff(want, wall); diff != "" {
		t.Errorf("GetEntity mismatch (-want +got):\n%s", diff)
	}

	unknown, err := svc.GetEntity(ctx, "house.ifc", 6)
	require.NoError(t, err)
	require.Equal(t, "IFCFUTURETHING", unknown.Keyword)
	require.Empty(t, unknown.GlobalID)
	require.Equal(t, []uint64{3}, unknown.References)
	require.Empty(t, unknown.Referrers)

	_, err = svc.GetEntity(ctx, "house.ifc", 99)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.GetEntity(ctx, "nope.ifc", 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetEntity_DecodeError(t *testing.T) {
	svc, dir := testService(t)
	broken := strings.Replace(testutil.Model, "#4=IFCMATERIAL('Concrete',$,$);", "#4=IFCMATERIAL(12);", 1)
	testutil.WriteFile(t, dir, "broken.ifc", broken)

	mat, err := svc.GetEntity(context.Background(), "broken.ifc", 4)
	require.NoError(t, err)
	require.NotEmpty(t, mat.DecodeError)
	require.Equal(t, []string{"12"}, mat.Args)
}

func TestGetEntity_StrictDecodeError(t *testing.T) {
	dir, store := testutil.TestLibrary(t)
	raw := strings.Replace(testutil.Model, "#4=IFCMATERIAL('Concrete',$,$);", "#4=IFCMATERIAL('Concrete',IFCTEXT('x'),$);", 1)
	testutil.WriteFile(t, dir, "raw.ifc", raw)

	lenient := NewService(store, testutil.TestDB(t), parser.Options{Workers: 2})
	mat, err := lenient.GetEntity(context.Background(), "raw.ifc", 4)
	require.NoError(t, err)
	require.Empty(t, mat.DecodeError)

	strict := NewService(store, testutil.TestDB(t), parser.Options{Strict: true, Workers: 2})
	mat, err = strict.GetEntity(context.Background(), "raw.ifc", 4)
	require.NoError(t, err)
	require.Contains(t, mat.DecodeError, "IFCMATERIAL")
}

func TestCheck_Strict(t *testing.T) {
	ctx := context.Background()
	raw := []byte(strings.Replace(testutil.Model, "#4=IFCMATERIAL('Concrete',$,$);", "#4=IFCMATERIAL('Concrete',IFCTEXT('x'),$);", 1))

	rep, err := Check(ctx, "raw.ifc", raw, parser.Options{Workers: 2})
	require.NoError(t, err)
	require.True(t, rep.OK(), "%+v", rep)

	rep, err = Check(ctx, "raw.ifc", raw, parser.Options{Strict: true, Workers: 2})
	require.NoError(t, err)
	require.False(t, rep.OK())
	require.True(t, rep.RoundTrip)
	require.Len(t, rep.Problems, 1)
	require.Contains(t, rep.Problems[0], "#4")
}

func TestVerify(t *testing.T) {
	svc, dir := testService(t)
	ctx := context.Background()
	testutil.WriteFile(t, dir, "ok.ifc", testutil.Model)
	testutil.WriteFile(t, dir, "dangling.ifc", strings.Replace(testutil.Model, "(#3),#4)", "(#3),#40)", 1))
	testutil.WriteFile(t, dir, "syntax.ifc", "ISO-10303-21;\nHEADER;\n")

	rep, err := svc.Verify(ctx, "ok.ifc")
	require.NoError(t, err)
	require.True(t, rep.OK(), "%+v", rep)
	require.Equal(t, 6, rep.Entities)
	require.Equal(t, 5, rep.Known)
	require.Equal(t, []string{"IFCFUTURETHING"}, rep.Unknown)

	rep, err = svc.Verify(ctx, "dangling.ifc")
	require.NoError(t, err)
	require.False(t, rep.OK())
	require.True(t, rep.RoundTrip)
	require.Len(t, rep.Problems, 1)
	require.Contains(t, rep.Problems[0], "#5 references #40")

	rep, err = svc.Verify(ctx, "syntax.ifc")
	require.NoError(t, err)
	require.False(t, rep.RoundTrip)
	require.Len(t, rep.Problems, 1)

	_, err = svc.Verify(ctx, "missing.ifc")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReferrersAndSearch(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	_, err := svc.CreateFile(ctx, "house.ifc", []byte(testutil.Model))
	require.NoError(t, err)

	refs, err := svc.Referrers(ctx, "house.ifc", 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 6}, refs)

	refs, err = svc.Referrers(ctx, "house.ifc", 6)
	require.NoError(t, err)
	require.Empty(t, refs)
	require.NotNil(t, refs)

	_, err = svc.Referrers(ctx, "other.ifc", 3)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	hits, err := svc.Search(ctx, "North", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "house.ifc", hits[0].Path)
}

func TestListAndDelete(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	for _, p := range []string{"b.ifc", "a.ifc"} {
		_, err := svc.CreateFile(ctx, p, []byte(testutil.Model))
		require.NoError(t, err)
	}

	items, total, err := svc.ListFiles(ctx, 10, 0, "IFC4")
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "a.ifc", items[0].Path)

	require.NoError(t, svc.DeleteFile(ctx, "a.ifc"))
	_, err = svc.GetFile(ctx, "a.ifc")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, svc.DeleteFile(ctx, "a.ifc"), apperr.ErrNotFound)

	items, total, err = svc.ListFiles(ctx, 10, 0, "IFC2X3")
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, items)
}

func TestMoveFile(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.CreateFile(ctx, "draft.ifc", []byte(testutil.Model))
	require.NoError(t, err)
	_, err = svc.CreateFile(ctx, "taken.ifc", []byte(testutil.Model))
	require.NoError(t, err)

	moved, err := svc.MoveFile(ctx, "draft.ifc", "site/house.ifc")
	require.NoError(t, err)
	require.Equal(t, "site/house.ifc", moved.Path)
	require.Equal(t, 6, moved.Entities)

	_, err = svc.GetFile(ctx, "draft.ifc")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	refs, err := svc.Referrers(ctx, "site/house.ifc", 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 6}, refs)

	_, err = svc.MoveFile(ctx, "site/house.ifc", "taken.ifc")
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
	_, err = svc.MoveFile(ctx, "missing.ifc", "other.ifc")
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.MoveFile(ctx, "site/house.ifc", "house.txt")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
