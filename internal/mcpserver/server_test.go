package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ifcstep/internal/fileservice"
	"github.com/starford/ifcstep/internal/parser"
	"github.com/starford/ifcstep/internal/storage"
	"github.com/starford/ifcstep/internal/testutil"
)

func testServer(t *testing.T) (*Server, storage.Provider) {
	t.Helper()
	_, store := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	srv := New(fileservice.NewService(store, db, parser.Options{}))
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are called directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"list_files":          srv.listFiles,
		"search_files":        srv.searchFiles,
		"find_entities":       srv.findEntities,
		"read_entity":         srv.readEntity,
		"get_referrers":       srv.getReferrers,
		"verify_file":         srv.verifyFile,
		"create_file":         srv.createFile,
		"import_file":         srv.importFile,
		"get_format_contract": srv.getFormatContract,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndVerifyFile(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_file", map[string]interface{}{
		"path":    "house.ifc",
		"content": testutil.Model,
	})
	if text := resultText(r); text != "created: house.ifc" {
		t.Fatalf("create result = %q", text)
	}
	data, err := store.Read("house.ifc")
	if err != nil || string(data) != testutil.Model {
		t.Fatalf("stored = %q, %v", data, err)
	}

	r = callTool(t, srv, "create_file", map[string]interface{}{
		"path":    "house.ifc",
		"content": testutil.Model,
	})
	if !r.IsError || !strings.Contains(resultText(r), "already exists") {
		t.Errorf("duplicate create = %q", resultText(r))
	}

	r = callTool(t, srv, "verify_file", map[string]interface{}{"path": "house.ifc"})
	var rep fileservice.VerifyReport
	if err := json.Unmarshal([]byte(resultText(r)), &rep); err != nil {
		t.Fatalf("verify result = %q", resultText(r))
	}
	if !rep.OK() || rep.Entities != 6 {
		t.Errorf("report = %+v", rep)
	}
}

func TestCreateFile_Invalid(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_file", map[string]interface{}{
		"path":    "broken.ifc",
		"content": "ISO-10303-21;\nHEADER;\n",
	})
	if !r.IsError {
		t.Error("expected error for unparsable content")
	}
	r = callTool(t, srv, "create_file", map[string]interface{}{"path": "x.ifc"})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}

func TestListAndSearchFiles(t *testing.T) {
	srv, _ := testServer(t)
	for _, p := range []string{"a.ifc", "b.ifc"} {
		callTool(t, srv, "create_file", map[string]interface{}{"path": p, "content": testutil.Model})
	}

	r := callTool(t, srv, "list_files", map[string]interface{}{"schema": "IFC4", "limit": 1})
	var list struct {
		Files []fileservice.FileSummary `json:"files"`
		Total int                       `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &list); err != nil {
		t.Fatalf("list result = %q", resultText(r))
	}
	if list.Total != 2 || len(list.Files) != 1 || list.Files[0].Path != "a.ifc" {
		t.Errorf("list = %+v", list)
	}

	r = callTool(t, srv, "search_files", map[string]interface{}{"query": "North"})
	if !strings.Contains(resultText(r), "a.ifc") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestEntityTools(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "create_file", map[string]interface{}{"path": "house.ifc", "content": testutil.Model})

	r := callTool(t, srv, "find_entities", map[string]interface{}{"keyword": "IfcWall"})
	if !strings.Contains(resultText(r), `"global_id": "3vB2YO$MX4xv5uCqZZG05x"`) {
		t.Errorf("find = %q", resultText(r))
	}
	if r := callTool(t, srv, "find_entities", map[string]interface{}{}); !r.IsError {
		t.Error("expected error without filters")
	}
	r = callTool(t, srv, "find_entities", map[string]interface{}{"name": "nothing like this"})
	if resultText(r) != "no entities found" {
		t.Errorf("empty find = %q", resultText(r))
	}

	// JSON numbers arrive as float64.
	r = callTool(t, srv, "read_entity", map[string]interface{}{"path": "house.ifc", "id": float64(3)})
	var ent fileservice.EntityDetail
	if err := json.Unmarshal([]byte(resultText(r)), &ent); err != nil {
		t.Fatalf("read_entity = %q", resultText(r))
	}
	if ent.Keyword != "IFCWALL" || ent.Name != "North wall" {
		t.Errorf("entity = %+v", ent)
	}

	r = callTool(t, srv, "get_referrers", map[string]interface{}{"path": "house.ifc", "id": float64(3)})
	if resultText(r) != "#5\n#6" {
		t.Errorf("referrers = %q", resultText(r))
	}
	r = callTool(t, srv, "get_referrers", map[string]interface{}{"path": "house.ifc", "id": float64(6)})
	if resultText(r) != "no referrers found" {
		t.Errorf("referrers of #6 = %q", resultText(r))
	}

	for _, args := range []map[string]interface{}{
		{"path": "house.ifc", "id": float64(0)},
		{"path": "house.ifc", "id": 2.5},
		{"path": "house.ifc"},
	} {
		if r := callTool(t, srv, "read_entity", args); !r.IsError {
			t.Errorf("read_entity(%v) should fail", args)
		}
	}

	r = callTool(t, srv, "read_entity", map[string]interface{}{"path": "nope.ifc", "id": float64(1)})
	if !r.IsError || resultText(r) != "not found: nope.ifc #1" {
		t.Errorf("missing file = %q", resultText(r))
	}
}

func TestImportFile_DataURI(t *testing.T) {
	srv, store := testServer(t)
	uri := "data:application/p21;base64," + base64.StdEncoding.EncodeToString([]byte(testutil.Model))

	r := callTool(t, srv, "import_file", map[string]interface{}{"url": uri, "path": "imports/../site/house.ifc"})
	if r.IsError {
		t.Fatalf("import = %q", resultText(r))
	}
	if _, err := store.Read("imports/site/house.ifc"); err != nil {
		t.Errorf("imported file missing: %v", err)
	}

	r = callTool(t, srv, "import_file", map[string]interface{}{"url": uri})
	var sum fileservice.FileSummary
	if err := json.Unmarshal([]byte(resultText(r)), &sum); err != nil {
		t.Fatalf("import = %q", resultText(r))
	}
	if !strings.HasSuffix(sum.Path, ".ifc") || sum.Entities != 6 {
		t.Errorf("generated import = %+v", sum)
	}
}

func TestImportFile_Rejected(t *testing.T) {
	srv, _ := testServer(t)
	cases := []string{
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(testutil.Model)),
		"data:application/p21;base64," + base64.StdEncoding.EncodeToString([]byte("not a model")),
		"data:application/p21," + testutil.Model,
		"ftp://example.com/house.ifc",
		"http://127.0.0.1/house.ifc",
	}
	for _, uri := range cases {
		if r := callTool(t, srv, "import_file", map[string]interface{}{"url": uri}); !r.IsError {
			t.Errorf("import %.40q should fail", uri)
		}
	}
}

func TestSanitizePath(t *testing.T) {
	cases := map[string]string{
		"a/b/c.ifc":      "a/b/c.ifc",
		"../../x.ifc":    "x.ifc",
		"a b/ü.ifc":      "a_b/_.ifc",
		"/abs//p.ifc":    "abs/p.ifc",
		"./site/./m.ifc": "site/m.ifc",
	}
	for in, want := range cases {
		if got := sanitizePath(in); got != want {
			t.Errorf("sanitizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatContract(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_format_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "ISO-10303-21;") {
		t.Error("contract missing file magic")
	}
}
