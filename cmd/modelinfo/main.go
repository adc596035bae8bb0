// modelinfo is a CLI utility for inspecting 3D model files without a GPU.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/modelview/internal/engine/texture"
	"github.com/Faultbox/modelview/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "tree":
		cmdTree(args)
	case "materials", "mat":
		cmdMaterials(args)
	case "textures", "tex":
		cmdTextures(args)
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modelinfo - 3D model file inspector

Usage:
  modelinfo <command> [options] <file>

Commands:
  tree <file>        Show the node hierarchy and meshes
  materials <file>   List materials with colors and texture slots
  textures <file>    List unique texture paths and whether they decode
  check <file>       Validate the file; exit status 1 on problems

Options:
  -raw               Skip triangulation and UV flipping

Examples:
  modelinfo tree models/house.obj
  modelinfo textures -raw scene.glb
  modelinfo check crate.gltf`)
}

// openModel parses the common flags and imports the model file.
func openModel(name string, args []string) (string, *formats.Scene) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	raw := fs.Bool("raw", false, "Skip triangulation and UV flipping")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: modelinfo %s [-raw] <file>\n", name)
		os.Exit(1)
	}
	path := fs.Arg(0)

	flags := formats.Triangulate | formats.FlipUVs
	if *raw {
		flags = 0
	}
	scene, err := formats.Import(path, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return path, scene
}

func cmdTree(args []string) {
	path, scene := openModel("tree", args)

	fmt.Printf("Model:     %s\n", path)
	fmt.Printf("Meshes:    %d\n", len(scene.Meshes))
	fmt.Printf("Materials: %d\n", len(scene.Materials))
	fmt.Println()

	printNode(scene, scene.Root, 0)
}

func printNode(scene *formats.Scene, n *formats.Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	name := n.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("%s%s\n", indent, name)
	for _, mi := range n.Meshes {
		if mi < 0 || mi >= len(scene.Meshes) {
			fmt.Printf("%s  - mesh #%d (out of range)\n", indent, mi)
			continue
		}
		m := scene.Meshes[mi]
		fmt.Printf("%s  - mesh #%d %q: %d vertices, %d faces, material %d%s\n",
			indent, mi, m.Name, len(m.Positions), len(m.Faces), m.MaterialIndex, attributes(m))
	}
	for _, c := range n.Children {
		printNode(scene, c, depth+1)
	}
}

func attributes(m *formats.Mesh) string {
	var attrs []string
	if m.HasNormals() {
		attrs = append(attrs, "normals")
	}
	if m.HasTexCoords(0) {
		attrs = append(attrs, "uv")
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

var textureSlots = []formats.TextureType{
	formats.TextureDiffuse,
	formats.TextureSpecular,
	formats.TextureAmbient,
	formats.TextureNormal,
}

func cmdMaterials(args []string) {
	_, scene := openModel("materials", args)

	for i, mat := range scene.Materials {
		fmt.Printf("#%d %s\n", i, mat.Name)
		for _, key := range []string{
			formats.KeyColorDiffuse,
			formats.KeyColorAmbient,
			formats.KeyColorSpecular,
			formats.KeyColorEmissive,
		} {
			if c, ok := mat.Color(key); ok {
				fmt.Printf("  %-15s %.3f %.3f %.3f\n", key, c[0], c[1], c[2])
			}
		}
		for _, key := range []string{formats.KeyShininess, formats.KeyOpacity} {
			if v, ok := mat.Float(key); ok {
				fmt.Printf("  %-15s %.3f\n", key, v)
			}
		}
		for _, slot := range textureSlots {
			for j := 0; j < mat.TextureCount(slot); j++ {
				p, _ := mat.Texture(slot, j)
				fmt.Printf("  %-15s %s\n", slot.String()+"["+fmt.Sprint(j)+"]", p)
			}
		}
	}
}

// textureRef is a unique texture path and the materials using it.
type textureRef struct {
	path  string
	users []string
}

func collectTextures(scene *formats.Scene) []textureRef {
	byPath := make(map[string]*textureRef)
	for _, mat := range scene.Materials {
		for _, slot := range textureSlots {
			for j := 0; j < mat.TextureCount(slot); j++ {
				p, _ := mat.Texture(slot, j)
				ref, ok := byPath[p]
				if !ok {
					ref = &textureRef{path: p}
					byPath[p] = ref
				}
				ref.users = append(ref.users, mat.Name+"/"+slot.String())
			}
		}
	}

	refs := make([]textureRef, 0, len(byPath))
	for _, r := range byPath {
		refs = append(refs, *r)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].path < refs[j].path })
	return refs
}

func cmdTextures(args []string) {
	path, scene := openModel("textures", args)

	refs := collectTextures(scene)
	fmt.Printf("%d unique textures\n\n", len(refs))
	for _, ref := range refs {
		img, err := texture.Decode(texture.ResolvePath(texture.Dir(path), ref.path))
		status := fmt.Sprintf("%dx%d, %d components", img.Width, img.Height, img.Components)
		if err != nil {
			status = "ERROR: " + err.Error()
		}
		fmt.Printf("%s\n  %s\n  used by %s\n", ref.path, status, strings.Join(ref.users, ", "))
	}
}

func cmdCheck(args []string) {
	path, scene := openModel("check", args)

	var errs error
	for _, w := range scene.Warnings {
		errs = multierr.Append(errs, fmt.Errorf("import: %s", w))
	}
	if scene.Incomplete() {
		errs = multierr.Append(errs, fmt.Errorf("scene has no drawable meshes"))
	}
	for i, m := range scene.Meshes {
		if n := badFaces(m); n > 0 {
			errs = multierr.Append(errs, fmt.Errorf("mesh #%d %q: %d faces reference missing vertices", i, m.Name, n))
		}
	}
	for _, ref := range collectTextures(scene) {
		if _, err := texture.Decode(texture.ResolvePath(texture.Dir(path), ref.path)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("texture %s: %w", ref.path, err))
		}
	}

	problems := multierr.Errors(errs)
	if len(problems) == 0 {
		fmt.Printf("%s: OK\n", path)
		return
	}
	fmt.Printf("%s: %d problems\n", path, len(problems))
	for _, p := range problems {
		fmt.Printf("  - %v\n", p)
	}
	os.Exit(1)
}

func badFaces(m *formats.Mesh) int {
	n := 0
	for _, f := range m.Faces {
		for _, idx := range f.Indices {
			if int(idx) >= len(m.Positions) {
				n++
				break
			}
		}
	}
	return n
}
