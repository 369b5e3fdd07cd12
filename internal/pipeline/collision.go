package pipeline

// artifactClaims tracks which source owns each artifact path. Artifact names
// are derived from the source stem only, so video/day1.mp4 and
// image/day1.png both map to day1_0.mp4; the second claimant is refused.
type artifactClaims struct {
	owners map[string]string // artifact path → source path
}

func newArtifactClaims() *artifactClaims {
	return &artifactClaims{owners: make(map[string]string)}
}

// claim records source as the owner of artifact. It returns the existing
// owner and false when another source got there first.
func (c *artifactClaims) claim(source, artifact string) (string, bool) {
	owner, exists := c.owners[artifact]
	if !exists || owner == source {
		c.owners[artifact] = source
		return source, true
	}
	return owner, false
}
