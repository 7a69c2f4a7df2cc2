package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sivansh11/aurora/asset"
	"github.com/sivansh11/aurora/asset/compiler"
	"github.com/sivansh11/aurora/asset/compiler/input"
	"github.com/sivansh11/aurora/types"
)

func TestParseMeshes(t *testing.T) {
	payload := `
# comment
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1

o quad
usemtl white
f 1 2 3 4

o tri
f 1/1/1 2/1/1 4/1/1

o empty
`
	r := newWavefrontReader(compiler.DefaultOptions())
	err := r.parseScene(mockResource(payload))
	if err != nil {
		t.Fatal(err)
	}

	expMeshes := []*input.Mesh{
		{
			Name:     "quad",
			Vertices: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			Indices:  []uint32{0, 1, 2, 0, 2, 3},
		},
		{
			Name:     "tri",
			Vertices: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Indices:  []uint32{0, 1, 2},
		},
	}

	if len(r.rawScene.Meshes) != len(expMeshes) {
		t.Fatalf("expected %d meshes; got %d", len(expMeshes), len(r.rawScene.Meshes))
	}
	for index, expMesh := range expMeshes {
		mesh := r.rawScene.Meshes[index]
		if mesh.Name != expMesh.Name {
			t.Fatalf("expected mesh %d to be named %q; got %q", index, expMesh.Name, mesh.Name)
		}
		if diff := cmp.Diff(expMesh.Vertices, mesh.Vertices); diff != "" {
			t.Fatalf("mesh %q vertex mismatch (-want +got):\n%s", mesh.Name, diff)
		}
		if diff := cmp.Diff(expMesh.Indices, mesh.Indices); diff != "" {
			t.Fatalf("mesh %q index mismatch (-want +got):\n%s", mesh.Name, diff)
		}
	}
}

func TestParseNegativeIndices(t *testing.T) {
	payload := `
v 0 0 0
v 1 0 0
v 0 1 0
v 5 5 5
f -4 -3 -2
`
	r := newWavefrontReader(compiler.DefaultOptions())
	if err := r.parse(mockResource(payload)); err != nil {
		t.Fatal(err)
	}

	if len(r.rawScene.Meshes) != 1 || r.rawScene.Meshes[0].Name != "default" {
		t.Fatalf("expected faces without an object to end up in a default mesh; got %d meshes", len(r.rawScene.Meshes))
	}

	mesh := r.rawScene.Meshes[0]
	expVertices := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if diff := cmp.Diff(expVertices, mesh.Vertices); diff != "" {
		t.Fatalf("vertex mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	specs := []struct {
		payload   string
		expErrSub string
	}{
		{"v 0 0", `expected 3 arguments; got 2`},
		{"v 0 a 0", `invalid syntax`},
		{"vt 0", `expected 2 arguments; got 1`},
		{"o", `expected 1 argument for object name`},
		{"v 0 0 0\nf 1 1", `expected 3 arguments for triangular face`},
		{"v 0 0 0\nf 1 1 1 1 1", `expected 3 arguments for triangular face`},
		{"v 0 0 0\nf 1 1 4", `could not parse vertex coord for face argument 2: index out of bounds`},
		{"v 0 0 0\nf 1/1 1/1 1/1", `could not parse tex coord for face argument 0`},
		{"v 0 0 0\nf 1 1/1 1", `expected each face argument to contain 1 indices`},
		{"v 0 0 0\nf /1 1 1", `face argument 0 does not include a vertex index`},
		{"call", `expected 1 argument; got 0`},
	}

	for specIndex, spec := range specs {
		r := newWavefrontReader(compiler.DefaultOptions())
		err := r.parse(mockResource(spec.payload))
		if err == nil || !strings.Contains(err.Error(), spec.expErrSub) {
			t.Errorf("[spec %d] expected error containing %q; got %v", specIndex, spec.expErrSub, err)
		}
	}
}

func TestParseIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.obj"), "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\ncall parts/part.obj\n")
	writeFile(t, filepath.Join(dir, "parts", "part.obj"), "o part\nv 0 0 5\nv 1 0 5\nv 0 1 5\nf 1 2 3\n")

	res, err := asset.NewResource(filepath.Join(dir, "main.obj"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	r := newWavefrontReader(compiler.DefaultOptions())
	if err = r.parse(res); err != nil {
		t.Fatal(err)
	}

	if len(r.rawScene.Meshes) != 2 {
		t.Fatalf("expected 2 meshes; got %d", len(r.rawScene.Meshes))
	}
	part := r.rawScene.Meshes[1]
	expVertices := []types.Vec3{{0, 0, 5}, {1, 0, 5}, {0, 1, 5}}
	if diff := cmp.Diff(expVertices, part.Vertices); diff != "" {
		t.Fatalf("included mesh vertex mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIncludeInsideOpenMesh(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.obj"), "v 0 0 0\nv 1 0 0\nv 0 1 0\no first\nf 1 2 3\no second\ncall empty.obj\nf 1 2 3\n")
	writeFile(t, filepath.Join(dir, "empty.obj"), "# nothing to see here\n")

	res, err := asset.NewResource(filepath.Join(dir, "main.obj"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	r := newWavefrontReader(compiler.DefaultOptions())
	if err = r.parseScene(res); err != nil {
		t.Fatal(err)
	}

	if len(r.rawScene.Meshes) != 2 {
		t.Fatalf("expected 2 meshes; got %d", len(r.rawScene.Meshes))
	}
	for index, expName := range []string{"first", "second"} {
		mesh := r.rawScene.Meshes[index]
		if mesh.Name != expName {
			t.Fatalf("expected mesh %d to be named %q; got %q", index, expName, mesh.Name)
		}
		if mesh.TriangleCount() != 1 || len(mesh.Vertices) != 3 {
			t.Fatalf("expected mesh %q to contain 1 triangle and 3 vertices; got %d and %d", mesh.Name, mesh.TriangleCount(), len(mesh.Vertices))
		}
	}
}

func TestParseIncludeErrorStack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.obj"), "call part.obj\n")
	writeFile(t, filepath.Join(dir, "part.obj"), "v 0 0 0\nf 1 2 3\n")

	res, err := asset.NewResource(filepath.Join(dir, "main.obj"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	r := newWavefrontReader(compiler.DefaultOptions())
	err = r.parse(res)
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, exp := range []string{"part.obj: 2] error", "referenced from", "main.obj:1 [call]"} {
		if !strings.Contains(err.Error(), exp) {
			t.Fatalf("expected error to contain %q; got %v", exp, err)
		}
	}
}

func mockResource(payload string) *asset.Resource {
	return asset.NewResourceFromStream("embedded.obj", strings.NewReader(payload))
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}
