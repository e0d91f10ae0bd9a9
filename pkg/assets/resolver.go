package assets

// Resolver maps a source asset path to the URL a page should reference.
// It combines manifest lookup with path prefixing.
type Resolver interface {
	// Asset resolves a source asset path to its full URL path, including
	// any configured prefix and published filename.
	Asset(source string) string
}

// manifestResolver wraps a Manifest to implement Resolver.
type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver from a Manifest with an optional path
// prefix prepended to every resolved path.
//
// Example:
//
//	manifest, _ := assets.LoadManifest("dist/manifest.json")
//	resolver := assets.NewResolver(manifest, "/public/")
//	resolver.Asset("app.js") // "/public/app.a1b2c3d4.js"
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{
		manifest: m,
		prefix:   prefix,
	}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(source)
}

// passthrough returns assets unchanged (for development mode, where
// fingerprinting is disabled).
type passthrough struct {
	prefix string
}

// NewPassthroughResolver creates a resolver that applies only the prefix,
// keeping dev and prod asset references consistent.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: prefix}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + source
}
