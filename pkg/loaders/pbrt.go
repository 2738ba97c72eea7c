package loaders

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/material"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// PBRTStatement is one parsed directive, such as `Shape "sphere" "float radius" 2`
type PBRTStatement struct {
	Type       string               // Directive (Camera, Material, Shape, ...)
	Subtype    string               // Quoted name following the directive
	Values     []float64            // Bare numeric arguments (LookAt, Translate, Scale)
	Parameters map[string]PBRTParam // Typed parameter list
}

// PBRTParam is a typed parameter with its raw values
type PBRTParam struct {
	Type   string
	Values []string
}

// pbrtState is the graphics state saved by AttributeBegin
type pbrtState struct {
	material material.Material
	ctm      affine
}

// pbrtBuilder turns a statement stream into a sphere scene
type pbrtBuilder struct {
	scene   *scene.Scene
	state   pbrtState
	stack   []pbrtState
	inWorld bool
	pending []string // lines of the statement being accumulated
	unnamed int      // counter for anonymous materials
}

// LoadPBRT reads the sphere subset of a pbrt-v4 scene file
func LoadPBRT(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	return ParsePBRT(f, sceneName(path))
}

// ParsePBRT builds a scene from pbrt directives. Only spheres and the diffuse, conductor and
// dielectric materials are understood; lights, film and sampler settings are ignored.
func ParsePBRT(r io.Reader, name string) (*scene.Scene, error) {
	b := &pbrtBuilder{
		scene: scene.New(name, geometry.CameraConfig{
			LookFrom:    core.NewVec3(0, 0, 0),
			LookAt:      core.NewVec3(0, 0, -1),
			Up:          core.NewVec3(0, 1, 0),
			VFov:        90,
			AspectRatio: 1,
		}),
		state: pbrtState{
			material: material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)),
			ctm:      identityTransform(),
		},
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := b.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	if err := b.flush(); err != nil {
		return nil, fmt.Errorf("at end of file: %w", err)
	}
	return b.scene, nil
}

func (b *pbrtBuilder) processLine(line string) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	// Block directives stand alone on their line
	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := b.flush(); err != nil {
			return err
		}
		return b.block(line)
	}

	if isStatementStart(line) {
		if err := b.flush(); err != nil {
			return err
		}
		b.pending = []string{line}
		return nil
	}

	if len(b.pending) == 0 {
		return fmt.Errorf("%w: unexpected continuation %q", ErrInvalidScene, line)
	}
	b.pending = append(b.pending, line)
	return nil
}

func (b *pbrtBuilder) block(directive string) error {
	switch directive {
	case "WorldBegin":
		b.inWorld = true
		// Transforms before WorldBegin belong to the camera, which LookAt alone places
		b.state.ctm = identityTransform()
	case "WorldEnd":
		b.inWorld = false
	case "AttributeBegin":
		b.stack = append(b.stack, b.state)
	case "AttributeEnd":
		if len(b.stack) == 0 {
			return fmt.Errorf("%w: AttributeEnd without AttributeBegin", ErrInvalidScene)
		}
		b.state = b.stack[len(b.stack)-1]
		b.stack = b.stack[:len(b.stack)-1]
	}
	return nil
}

// flush parses and applies the accumulated statement
func (b *pbrtBuilder) flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	text := strings.Join(b.pending, " ")
	b.pending = nil

	stmt, err := parseStatement(text)
	if err != nil {
		return err
	}
	return b.apply(stmt)
}

func (b *pbrtBuilder) apply(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt":
		if len(stmt.Values) != 9 {
			return fmt.Errorf("%w: LookAt needs 9 values, got %d", ErrInvalidScene, len(stmt.Values))
		}
		v := stmt.Values
		b.scene.CameraConfig.LookFrom = core.NewVec3(v[0], v[1], v[2])
		b.scene.CameraConfig.LookAt = core.NewVec3(v[3], v[4], v[5])
		b.scene.CameraConfig.Up = core.NewVec3(v[6], v[7], v[8])

	case "Camera":
		if fov, ok := stmt.GetFloatParam("fov"); ok {
			b.scene.CameraConfig.VFov = fov
		}
		if lensRadius, ok := stmt.GetFloatParam("lensradius"); ok {
			b.scene.CameraConfig.Aperture = 2 * lensRadius
		}
		if focus, ok := stmt.GetFloatParam("focaldistance"); ok {
			b.scene.CameraConfig.FocusDistance = focus
		}

	case "Film":
		xres, okX := stmt.GetFloatParam("xresolution")
		yres, okY := stmt.GetFloatParam("yresolution")
		if okX && okY && xres > 0 && yres > 0 {
			b.scene.CameraConfig.AspectRatio = xres / yres
		}

	case "Translate":
		if len(stmt.Values) != 3 {
			return fmt.Errorf("%w: Translate needs 3 values", ErrInvalidScene)
		}
		b.state.ctm = b.state.ctm.then(translateTransform(core.NewVec3(stmt.Values[0], stmt.Values[1], stmt.Values[2])))

	case "Scale":
		if len(stmt.Values) != 3 {
			return fmt.Errorf("%w: Scale needs 3 values", ErrInvalidScene)
		}
		b.state.ctm = b.state.ctm.then(scaleTransform(stmt.Values[0], stmt.Values[1], stmt.Values[2]))

	case "Rotate":
		if len(stmt.Values) != 4 {
			return fmt.Errorf("%w: Rotate needs 4 values", ErrInvalidScene)
		}
		rot, err := rotateTransform(stmt.Values[0], core.NewVec3(stmt.Values[1], stmt.Values[2], stmt.Values[3]))
		if err != nil {
			return err
		}
		b.state.ctm = b.state.ctm.then(rot)

	case "Identity":
		b.state.ctm = identityTransform()

	case "Transform", "ConcatTransform":
		m, err := matrixTransform(stmt.Values)
		if err != nil {
			return err
		}
		if stmt.Type == "Transform" {
			b.state.ctm = m
		} else {
			b.state.ctm = b.state.ctm.then(m)
		}

	case "Material":
		mat, err := convertPBRTMaterial(stmt.Subtype, stmt)
		if err != nil {
			return err
		}
		b.state.material = b.scene.AddMaterial(fmt.Sprintf("pbrt-%d", b.unnamed), mat)
		b.unnamed++

	case "MakeNamedMaterial":
		kind, _ := stmt.GetStringParam("type")
		mat, err := convertPBRTMaterial(kind, stmt)
		if err != nil {
			return err
		}
		b.scene.AddMaterial(stmt.Subtype, mat)

	case "NamedMaterial":
		mat, err := b.scene.Material(stmt.Subtype)
		if err != nil {
			return err
		}
		b.state.material = mat

	case "Shape":
		if !b.inWorld {
			return fmt.Errorf("%w: Shape outside WorldBegin", ErrInvalidScene)
		}
		if stmt.Subtype != "sphere" {
			return fmt.Errorf("%w: shape %q, only spheres are supported", ErrUnsupportedFormat, stmt.Subtype)
		}
		radius, ok := stmt.GetFloatParam("radius")
		if !ok {
			radius = 1 // pbrt default
		}
		scale, ok := b.state.ctm.uniformScale()
		if !ok {
			return fmt.Errorf("%w: non-uniform scale on a sphere", ErrUnsupportedFormat)
		}
		center := b.state.ctm.apply(core.Vec3{})
		if _, err := b.scene.AddSphere(center, math.Abs(radius*scale), b.state.material); err != nil {
			return err
		}
	}
	// Other directives (LightSource, Sampler, Integrator, ...) do not affect sphere scenes
	return nil
}

// convertPBRTMaterial maps pbrt-v4 material types onto the three sphere materials
func convertPBRTMaterial(kind string, stmt *PBRTStatement) (material.Material, error) {
	switch kind {
	case "diffuse":
		albedo := core.NewVec3(0.5, 0.5, 0.5)
		if rgb, ok := stmt.GetRGBParam("reflectance"); ok {
			albedo = rgb
		}
		return material.NewLambertian(albedo), nil
	case "conductor":
		albedo := core.NewVec3(0.9, 0.9, 0.9)
		if rgb, ok := stmt.GetRGBParam("reflectance"); ok {
			albedo = rgb
		}
		roughness, _ := stmt.GetFloatParam("roughness")
		return material.NewMetal(albedo, roughness), nil
	case "dielectric":
		eta, ok := stmt.GetFloatParam("eta")
		if !ok {
			eta = 1.5 // pbrt default
		}
		return material.NewDielectric(eta), nil
	default:
		return nil, fmt.Errorf("%w: material %q", ErrUnsupportedFormat, kind)
	}
}

// tokenizePBRT splits a statement into words, keeping quoted strings and bracketed lists whole
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes, inBrackets := false, false

	emit := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				emit()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			emit()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			emit()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			emit()
		default:
			current.WriteRune(char)
		}
	}
	emit()

	return tokens
}

// parseStatement parses `Type "subtype" "type name" value ...` or `Type v1 v2 ...`
func parseStatement(line string) (*PBRTStatement, error) {
	parts := tokenizePBRT(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty statement", ErrInvalidScene)
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}
	parts = parts[1:]

	if len(parts) > 0 && isQuoted(parts[0]) {
		stmt.Subtype = strings.Trim(parts[0], `"`)
		parts = parts[1:]
	}

	// Bare numbers (possibly bracketed) before any parameter list
	for len(parts) > 0 && !isQuoted(parts[0]) {
		for _, field := range strings.Fields(strings.Trim(parts[0], "[]")) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: invalid number %q", ErrInvalidScene, stmt.Type, field)
			}
			stmt.Values = append(stmt.Values, v)
		}
		parts = parts[1:]
	}

	for i := 0; i < len(parts); i++ {
		decl := strings.Fields(strings.Trim(parts[i], `"`))
		if len(decl) != 2 {
			return nil, fmt.Errorf("%w: %s: malformed parameter %s", ErrInvalidScene, stmt.Type, parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("%w: %s: parameter %q has no value", ErrInvalidScene, stmt.Type, decl[1])
		}
		i++

		var values []string
		if strings.HasPrefix(parts[i], "[") {
			values = strings.Fields(strings.Trim(parts[i], "[] "))
		} else {
			values = []string{parts[i]}
		}
		for j := range values {
			values[j] = strings.Trim(values[j], `"`)
		}
		stmt.Parameters[decl[1]] = PBRTParam{Type: decl[0], Values: values}
	}

	return stmt, nil
}

func isQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

// GetFloatParam extracts a float parameter
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetRGBParam extracts an RGB color parameter
func (stmt *PBRTStatement) GetRGBParam(name string) (core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) < 3 {
		return core.Vec3{}, false
	}
	r, err1 := strconv.ParseFloat(param.Values[0], 64)
	g, err2 := strconv.ParseFloat(param.Values[1], 64)
	b, err3 := strconv.ParseFloat(param.Values[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return core.Vec3{}, false
	}
	return core.NewVec3(r, g, b), true
}

// GetStringParam extracts a string parameter
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// stripComment removes a trailing # comment that is not inside a quoted string
func stripComment(line string) string {
	inQuotes := false
	for i, char := range line {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// isStatementStart reports whether line begins a new directive
func isStatementStart(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "Camera", "Film", "Sampler", "Integrator", "LookAt", "PixelFilter",
		"Material", "MakeNamedMaterial", "NamedMaterial", "Texture",
		"Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Identity", "Transform", "ConcatTransform",
		"ReverseOrientation", "Attribute", "ColorSpace", "Option":
		return true
	}
	return false
}
