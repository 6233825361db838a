package importer

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// objSource is an OBJ file rewritten so every name and path is a single token, with its
// material library references pulled out.
type objSource struct {
	body string
	// libs are the material libraries, relative to the OBJ's directory
	libs []string
	// materials holds the material tokens named by usemtl statements
	materials map[string]bool
}

// prepareOBJ rewrites an OBJ for the decoder, which splits statements on whitespace.
// Object and material names are escaped into single tokens and groups become objects.
// Faces that come before any object are put in one named "default".
func prepareOBJ(text, dir string) objSource {
	src := objSource{materials: make(map[string]bool)}
	var sb strings.Builder
	inObject := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}

		keyword, rest := splitKeyword(line)
		switch keyword {
		case "mtllib":
			src.libs = append(src.libs, libraryPaths(rest, dir)...)
			continue
		case "o", "g":
			if rest == "" {
				rest = "default"
			}
			line = "o " + url.PathEscape(rest)
			inObject = true
		case "usemtl":
			if rest == "" {
				continue
			}
			token := url.PathEscape(rest)
			src.materials[token] = true
			line = "usemtl " + token
		case "f":
			if len(strings.Fields(rest)) < 3 {
				continue
			}
		case "vt":
			if len(strings.Fields(rest)) == 1 {
				line += " 0"
			}
		}
		if !inObject && (keyword == "f" || keyword == "usemtl") {
			sb.WriteString("o default\n")
			inObject = true
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	src.body = sb.String()
	return src
}

// libraryPaths splits an mtllib statement. The whole statement is one library when a file
// by that name exists, otherwise every field is a library.
func libraryPaths(rest, dir string) []string {
	if rest == "" {
		return nil
	}
	whole := cleanAssetPath(rest)
	if _, err := os.Stat(filepath.Join(dir, whole)); err == nil {
		return []string{whole}
	}
	var libs []string
	for _, f := range strings.Fields(rest) {
		libs = append(libs, cleanAssetPath(f))
	}
	return libs
}

// mapOptionArgs is the number of arguments each texture map option takes. Options taking
// more than one argument accept fewer when the following field is not a number.
var mapOptionArgs = map[string]int{
	"-blendu":  1,
	"-blendv":  1,
	"-bm":      1,
	"-boost":   1,
	"-cc":      1,
	"-clamp":   1,
	"-imfchan": 1,
	"-texres":  1,
	"-type":    1,
	"-mm":      2,
	"-o":       3,
	"-s":       3,
	"-t":       3,
}

// prepareMTL rewrites an MTL library for the decoder. Material names and the diffuse map
// path are escaped into single tokens. Other texture statements are dropped, and so is
// anything before the first newmtl.
func prepareMTL(text string) string {
	var sb strings.Builder
	inMaterial := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}

		keyword, rest := splitKeyword(line)
		switch {
		case keyword == "newmtl":
			line = "newmtl " + url.PathEscape(rest)
			inMaterial = true
		case !inMaterial:
			continue
		case keyword == "map_Kd":
			path := mapPath(rest)
			if path == "" {
				continue
			}
			line = "map_Kd " + url.PathEscape(path)
		case strings.HasPrefix(keyword, "map_"), keyword == "bump", keyword == "disp",
			keyword == "decal", keyword == "refl", keyword == "norm":
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// mapPath skips the options of a texture map statement and returns the rest of the line as
// the image path, so paths containing spaces survive.
func mapPath(rest string) string {
	for strings.HasPrefix(rest, "-") {
		opt, tail := splitKeyword(rest)
		n, ok := mapOptionArgs[opt]
		if !ok {
			break
		}
		rest = tail
		for i := 0; i < n && rest != ""; i++ {
			arg, after := splitKeyword(rest)
			if i > 0 && !isNumber(arg) {
				break
			}
			rest = after
		}
	}
	return strings.TrimSpace(rest)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
