package parser

// ResolveMedia resolves an embedded image relationship against the drawing
// part's own relationships and returns the media part path.
func ResolveMedia(pkg *Package, drawingPart, relID string) (string, error) {
	return ResolveRelationship(pkg, drawingPart, relID)
}
