package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset"
	"github.com/sivansh11/aurora/asset/compiler"
	"github.com/sivansh11/aurora/asset/compiler/input"
	"github.com/sivansh11/aurora/asset/scene"
	"github.com/sivansh11/aurora/log"
	"github.com/sivansh11/aurora/types"
)

type wavefrontSceneReader struct {
	logger log.Logger
	opts   compiler.Options

	// The parsed scene.
	rawScene *input.Scene

	// Global list of vertices. Normal and uv coordinates are not used by
	// the compiler but their counts are tracked so that face indices
	// referencing them can be validated.
	vertexList  []types.Vec3
	normalCount int
	uvCount     int

	// Maps global vertex indices to local indices in the mesh currently
	// being parsed.
	meshVertexIndex map[int]uint32

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader(opts compiler.Options) *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger:          log.New("wavefront scene reader"),
		opts:            opts,
		rawScene:        input.NewScene(),
		vertexList:      make([]types.Vec3, 0),
		meshVertexIndex: make(map[int]uint32),
		errStack:        make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parseScene(sceneRes)
	if err != nil {
		return nil, err
	}

	r.logger.Noticef(
		"parsed scene in %d ms (%d meshes, %d triangles)",
		time.Since(start).Nanoseconds()/1e6, len(r.rawScene.Meshes), r.rawScene.TriangleCount(),
	)

	// Compile scene into an optimized, gpu-friendly format
	return compiler.Compile(r.rawScene, r.opts)
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Start a new mesh; subsequent faces are appended to it.
func (r *wavefrontSceneReader) startMesh(name string) *input.Mesh {
	r.verifyLastParsedMesh()
	mesh := input.NewMesh(name)
	r.rawScene.Meshes = append(r.rawScene.Meshes, mesh)
	clear(r.meshVertexIndex)
	return mesh
}

// Get the mesh that faces are currently appended to, creating a default
// one if no object has been defined yet.
func (r *wavefrontSceneReader) currentMesh() *input.Mesh {
	if len(r.rawScene.Meshes) == 0 {
		return r.startMesh("default")
	}
	return r.rawScene.Meshes[len(r.rawScene.Meshes)-1]
}

// Parse a top-level scene file and any files it includes.
func (r *wavefrontSceneReader) parseScene(res *asset.Resource) error {
	if err := r.parse(res); err != nil {
		return err
	}

	// Included files may return while the mesh of the including file is
	// still open, so the last mesh is only checked here.
	r.verifyLastParsedMesh()
	return nil
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := r.uvCount
	relNormalOffset := r.normalCount

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "mtllib", "usemtl", "s":
			r.logger.Debugf(`[%s: %d] ignoring "%s" statement`, res.Path(), lineNum, lineTokens[0])
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			if _, err := parseVec3(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.normalCount++
		case "vt":
			if _, err := parseVec2(lineTokens); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvCount++
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}
			r.startMesh(lineTokens[1])
		case "f":
			if err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset); err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	return nil
}

// Drop the last parsed mesh if it contains no triangles.
func (r *wavefrontSceneReader) verifyLastParsedMesh() {
	lastMeshIndex := len(r.rawScene.Meshes) - 1
	if lastMeshIndex >= 0 && r.rawScene.Meshes[lastMeshIndex].TriangleCount() == 0 {
		r.logger.Warningf(`dropping mesh "%s" as it contains no polygons`, r.rawScene.Meshes[lastMeshIndex].Name)
		r.rawScene.Meshes = r.rawScene.Meshes[:lastMeshIndex]
	}
}

// Parse a triangular or quad face and append it to the current mesh as one
// or two indexed triangles. Faces with more than 4 vertices are rejected.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) error {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return errors.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var globalIndices [4]int
	var err error
	expIndices := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return errors.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return errors.Errorf("face argument %d does not include a vertex index", arg)
		}

		globalIndices[arg], err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return errors.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}

		if expIndices > 1 && vTokens[1] != "" {
			if _, err = selectFaceCoordIndex(vTokens[1], r.uvCount, relUvOffset); err != nil {
				return errors.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
		}

		if expIndices > 2 && vTokens[2] != "" {
			if _, err = selectFaceCoordIndex(vTokens[2], r.normalCount, relNormalOffset); err != nil {
				return errors.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
		}
	}

	mesh := r.currentMesh()
	var localIndices [4]uint32
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		localIndices[arg] = r.localVertexIndex(mesh, globalIndices[arg])
	}

	mesh.AddTriangle(localIndices[0], localIndices[1], localIndices[2])
	if len(lineTokens) == 5 {
		mesh.AddTriangle(localIndices[0], localIndices[2], localIndices[3])
	}
	return nil
}

// Map a global vertex index to an index in the mesh vertex list, copying
// the vertex into the mesh the first time it is referenced.
func (r *wavefrontSceneReader) localVertexIndex(mesh *input.Mesh, globalIndex int) uint32 {
	if localIndex, exists := r.meshVertexIndex[globalIndex]; exists {
		return localIndex
	}

	localIndex := mesh.AddVertex(r.vertexList[globalIndex])
	r.meshVertexIndex[globalIndex] = localIndex
	return localIndex
}

// Given an index for a face coord type (vertex, normal, tex) calculate the
// proper offset into the coord list. Wavefront format can also use negative
// indices to reference elements from the end of the coord list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, errors.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, errors.Errorf(`unsupported syntax for "%s"; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec2 row.
func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, errors.Errorf(`unsupported syntax for "%s"; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
