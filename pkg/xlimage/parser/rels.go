package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Relationship is a single record of a .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Relationship []Relationship `xml:"Relationship"`
}

// RelsPath returns the relationships part that belongs to part: the file
// name with ".rels" appended, inside a "_rels" directory next to it. The
// package root ("") owns "_rels/.rels".
func RelsPath(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// ReadRelationships decodes the .rels part belonging to part.
func ReadRelationships(pkg *Package, part string) ([]Relationship, error) {
	const op = "rels.read"

	relsPath := RelsPath(part)
	data, err := pkg.ReadPart(relsPath)
	if err != nil {
		return nil, newError(op, KindCorruptPackage, relsPath, err)
	}

	var rels relationships
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&rels); err != nil {
		return nil, newError(op, KindCorruptPackage, relsPath, err)
	}
	return rels.Relationship, nil
}

// ResolveRelationship looks up id in the .rels part of part and returns the
// package-relative path of its target.
func ResolveRelationship(pkg *Package, part, id string) (string, error) {
	const op = "rels.resolve"

	rels, err := ReadRelationships(pkg, part)
	if err != nil {
		return "", err
	}

	for _, rel := range rels {
		if rel.ID != id {
			continue
		}
		if strings.EqualFold(rel.TargetMode, "External") {
			return "", corrupt(op, RelsPath(part), "relationship %s targets external resource %q", id, rel.Target)
		}
		target, err := ResolveTarget(part, rel.Target)
		if err != nil {
			return "", err
		}
		return target, nil
	}

	return "", newError(op, KindRelationshipNotFound, RelsPath(part), fmt.Errorf("no relationship with id %q", id))
}

// ResolveTarget turns a relationship target into a package-relative part
// name. Relative targets are resolved against the directory of the source
// part; targets starting with "/" are relative to the package root.
func ResolveTarget(part, target string) (string, error) {
	const op = "rels.target"

	if target == "" {
		return "", corrupt(op, RelsPath(part), "empty relationship target")
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}

	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		resolved = path.Join(path.Dir(part), target)
	}

	if resolved == "." || resolved == ".." || strings.HasPrefix(resolved, "../") {
		return "", corrupt(op, RelsPath(part), "target %q escapes package root", target)
	}
	return resolved, nil
}

// findRelationshipByType returns the first relationship whose type URI ends
// with suffix.
func findRelationshipByType(rels []Relationship, suffix string) (Relationship, bool) {
	for _, rel := range rels {
		if strings.HasSuffix(rel.Type, suffix) {
			return rel, true
		}
	}
	return Relationship{}, false
}
